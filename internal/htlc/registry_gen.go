// Code generated by hand against the fixed Registry ABI (spec §6), same
// caveat as atomicswap_gen.go: no Solidity source lives in this tree for
// abigen to run against.
package htlc

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const registryABIJSON = `[
	{"type":"function","name":"getERC20Address","stateMutability":"view","inputs":[{"name":"token","type":"address"},{"name":"refundAddress","type":"address"},{"name":"redeemer","type":"address"},{"name":"timelock","type":"uint256"},{"name":"amount","type":"uint256"},{"name":"secretHash","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"createERC20SwapAddress","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"},{"name":"refundAddress","type":"address"},{"name":"redeemer","type":"address"},{"name":"timelock","type":"uint256"},{"name":"amount","type":"uint256"},{"name":"secretHash","type":"bytes32"}],"outputs":[{"name":"htlc","type":"address"}]},
	{"type":"event","name":"UDACreated","anonymous":false,"inputs":[{"name":"udaAddress","type":"address","indexed":true},{"name":"htlcAddress","type":"address","indexed":true},{"name":"token","type":"address","indexed":false}]},
	{"type":"event","name":"NativeUDACreated","anonymous":false,"inputs":[{"name":"udaAddress","type":"address","indexed":true},{"name":"htlcAddress","type":"address","indexed":true}]}
]`

// RegistryMetaData contains the ABI for the Registry contract.
var RegistryMetaData = &bind.MetaData{ABI: registryABIJSON}

type Registry struct {
	RegistryCaller
	RegistryTransactor
	RegistryFilterer
}

type RegistryCaller struct {
	contract *bind.BoundContract
}

type RegistryTransactor struct {
	contract *bind.BoundContract
}

type RegistryFilterer struct {
	contract *bind.BoundContract
}

func NewRegistry(address common.Address, backend bind.ContractBackend) (*Registry, error) {
	contract, err := bindRegistry(address, backend, backend, backend)
	if err != nil {
		return nil, err
	}
	return &Registry{
		RegistryCaller:     RegistryCaller{contract: contract},
		RegistryTransactor: RegistryTransactor{contract: contract},
		RegistryFilterer:   RegistryFilterer{contract: contract},
	}, nil
}

func bindRegistry(address common.Address, caller bind.ContractCaller, transactor bind.ContractTransactor, filterer bind.ContractFilterer) (*bind.BoundContract, error) {
	parsed, err := RegistryMetaData.GetAbi()
	if err != nil {
		return nil, err
	}
	return bind.NewBoundContract(address, *parsed, caller, transactor, filterer), nil
}

// GetERC20Address computes the deterministic deposit address for the six
// HTLC parameters without touching state.
//
// Solidity: function getERC20Address(address token, address refundAddress, address redeemer, uint256 timelock, uint256 amount, bytes32 secretHash) view returns(address)
func (_Registry *RegistryCaller) GetERC20Address(opts *bind.CallOpts, token, refundAddress, redeemer common.Address, timelock, amount *big.Int, secretHash [32]byte) (common.Address, error) {
	var out []interface{}
	err := _Registry.contract.Call(opts, &out, "getERC20Address", token, refundAddress, redeemer, timelock, amount, secretHash)
	if err != nil {
		return common.Address{}, err
	}
	return out[0].(common.Address), nil
}

// CreateERC20SwapAddress deploys and activates the HTLC bound to the six
// parameters, moving the deposit address's funds into it.
//
// Solidity: function createERC20SwapAddress(address token, address refundAddress, address redeemer, uint256 timelock, uint256 amount, bytes32 secretHash) returns(address htlc)
func (_Registry *RegistryTransactor) CreateERC20SwapAddress(opts *bind.TransactOpts, token, refundAddress, redeemer common.Address, timelock, amount *big.Int, secretHash [32]byte) (*types.Transaction, error) {
	return _Registry.contract.Transact(opts, "createERC20SwapAddress", token, refundAddress, redeemer, timelock, amount, secretHash)
}

// RegistryUDACreated represents a UDACreated event raised by the Registry contract.
type RegistryUDACreated struct {
	UdaAddress  common.Address
	HtlcAddress common.Address
	Token       common.Address
	Raw         types.Log
}

// RegistryNativeUDACreated represents a NativeUDACreated event raised by the Registry contract.
type RegistryNativeUDACreated struct {
	UdaAddress  common.Address
	HtlcAddress common.Address
	Raw         types.Log
}

// FilterUDACreated is a free log retrieval operation binding the UDACreated event.
func (_Registry *RegistryFilterer) FilterUDACreated(opts *bind.FilterOpts, udaAddress []common.Address) ([]RegistryUDACreated, error) {
	var udaRule []interface{}
	for _, a := range udaAddress {
		udaRule = append(udaRule, a)
	}
	logs, sub, err := _Registry.contract.FilterLogs(opts, "UDACreated", udaRule)
	if err != nil {
		return nil, err
	}
	defer sub.Unsubscribe()

	var out []RegistryUDACreated
	for _, log := range logs {
		var ev RegistryUDACreated
		if err := _Registry.contract.UnpackLog(&ev, "UDACreated", log); err != nil {
			return nil, err
		}
		ev.Raw = log
		out = append(out, ev)
	}
	return out, nil
}

// FilterNativeUDACreated is a free log retrieval operation binding the NativeUDACreated event.
func (_Registry *RegistryFilterer) FilterNativeUDACreated(opts *bind.FilterOpts, udaAddress []common.Address) ([]RegistryNativeUDACreated, error) {
	var udaRule []interface{}
	for _, a := range udaAddress {
		udaRule = append(udaRule, a)
	}
	logs, sub, err := _Registry.contract.FilterLogs(opts, "NativeUDACreated", udaRule)
	if err != nil {
		return nil, err
	}
	defer sub.Unsubscribe()

	var out []RegistryNativeUDACreated
	for _, log := range logs {
		var ev RegistryNativeUDACreated
		if err := _Registry.contract.UnpackLog(&ev, "NativeUDACreated", log); err != nil {
			return nil, err
		}
		ev.Raw = log
		out = append(out, ev)
	}
	return out, nil
}
