// Code generated by hand against the fixed AtomicSwap ABI (spec §6) in the
// style of abigen output - no generator was run, there is no Solidity
// source in this tree to run it against. Keep this file's shape in sync
// with abigen's conventions so it can be replaced by a real generated
// file without touching callers if the ABI source ever lands here.
package htlc

import (
	"errors"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	_ = errors.New
	_ = big.NewInt
	_ = strings.NewReader
	_ = ethereum.NotFound
	_ = bind.Bind
)

const atomicSwapABIJSON = `[
	{"type":"function","name":"initiate","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"},{"name":"redeemer","type":"address"},{"name":"timelock","type":"uint256"},{"name":"amount","type":"uint256"},{"name":"secretHash","type":"bytes32"}],"outputs":[{"name":"orderID","type":"bytes32"}]},
	{"type":"function","name":"initiateWithSignature","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"},{"name":"initiator","type":"address"},{"name":"redeemer","type":"address"},{"name":"timelock","type":"uint256"},{"name":"amount","type":"uint256"},{"name":"secretHash","type":"bytes32"},{"name":"signature","type":"bytes"}],"outputs":[{"name":"orderID","type":"bytes32"}]},
	{"type":"function","name":"redeem","stateMutability":"nonpayable","inputs":[{"name":"orderID","type":"bytes32"},{"name":"secret","type":"bytes32"}],"outputs":[]},
	{"type":"function","name":"refund","stateMutability":"nonpayable","inputs":[{"name":"orderID","type":"bytes32"}],"outputs":[]},
	{"type":"function","name":"computeOrderID","stateMutability":"view","inputs":[{"name":"token","type":"address"},{"name":"initiator","type":"address"},{"name":"redeemer","type":"address"},{"name":"timelock","type":"uint256"},{"name":"amount","type":"uint256"},{"name":"secretHash","type":"bytes32"}],"outputs":[{"name":"","type":"bytes32"}]},
	{"type":"event","name":"Initiated","anonymous":false,"inputs":[{"name":"orderID","type":"bytes32","indexed":true},{"name":"secretHash","type":"bytes32","indexed":false},{"name":"amount","type":"uint256","indexed":false}]},
	{"type":"event","name":"Redeemed","anonymous":false,"inputs":[{"name":"orderID","type":"bytes32","indexed":true},{"name":"secretHash","type":"bytes32","indexed":false},{"name":"secret","type":"bytes32","indexed":false}]},
	{"type":"event","name":"Refunded","anonymous":false,"inputs":[{"name":"orderID","type":"bytes32","indexed":true}]}
]`

// AtomicSwapMetaData contains the ABI for the AtomicSwap contract.
var AtomicSwapMetaData = &bind.MetaData{ABI: atomicSwapABIJSON}

// AtomicSwap is an auto generated Go binding around an Ethereum contract.
type AtomicSwap struct {
	AtomicSwapCaller
	AtomicSwapTransactor
	AtomicSwapFilterer
}

type AtomicSwapCaller struct {
	contract *bind.BoundContract
}

type AtomicSwapTransactor struct {
	contract *bind.BoundContract
}

type AtomicSwapFilterer struct {
	contract *bind.BoundContract
}

func NewAtomicSwap(address common.Address, backend bind.ContractBackend) (*AtomicSwap, error) {
	contract, err := bindAtomicSwap(address, backend, backend, backend)
	if err != nil {
		return nil, err
	}
	return &AtomicSwap{
		AtomicSwapCaller:     AtomicSwapCaller{contract: contract},
		AtomicSwapTransactor: AtomicSwapTransactor{contract: contract},
		AtomicSwapFilterer:   AtomicSwapFilterer{contract: contract},
	}, nil
}

func bindAtomicSwap(address common.Address, caller bind.ContractCaller, transactor bind.ContractTransactor, filterer bind.ContractFilterer) (*bind.BoundContract, error) {
	parsed, err := AtomicSwapMetaData.GetAbi()
	if err != nil {
		return nil, err
	}
	return bind.NewBoundContract(address, *parsed, caller, transactor, filterer), nil
}

// ComputeOrderID calls the contract's pure orderID derivation.
//
// Solidity: function computeOrderID(address token, address initiator, address redeemer, uint256 timelock, uint256 amount, bytes32 secretHash) view returns(bytes32)
func (_AtomicSwap *AtomicSwapCaller) ComputeOrderID(opts *bind.CallOpts, token, initiator, redeemer common.Address, timelock, amount *big.Int, secretHash [32]byte) ([32]byte, error) {
	var out []interface{}
	err := _AtomicSwap.contract.Call(opts, &out, "computeOrderID", token, initiator, redeemer, timelock, amount, secretHash)
	if err != nil {
		return [32]byte{}, err
	}
	return *abi.ConvertType(out[0], new([32]byte)).(*[32]byte), nil
}

// Initiate submits the ERC-20 initiate call.
//
// Solidity: function initiate(address token, address redeemer, uint256 timelock, uint256 amount, bytes32 secretHash) returns(bytes32 orderID)
func (_AtomicSwap *AtomicSwapTransactor) Initiate(opts *bind.TransactOpts, token, redeemer common.Address, timelock, amount *big.Int, secretHash [32]byte) (*types.Transaction, error) {
	return _AtomicSwap.contract.Transact(opts, "initiate", token, redeemer, timelock, amount, secretHash)
}

// InitiateWithSignature relays a user's EIP-712 Initiate attestation.
//
// Solidity: function initiateWithSignature(address token, address initiator, address redeemer, uint256 timelock, uint256 amount, bytes32 secretHash, bytes signature) returns(bytes32 orderID)
func (_AtomicSwap *AtomicSwapTransactor) InitiateWithSignature(opts *bind.TransactOpts, token, initiator, redeemer common.Address, timelock, amount *big.Int, secretHash [32]byte, signature []byte) (*types.Transaction, error) {
	return _AtomicSwap.contract.Transact(opts, "initiateWithSignature", token, initiator, redeemer, timelock, amount, secretHash, signature)
}

// Redeem reveals the secret and releases funds to the redeemer.
//
// Solidity: function redeem(bytes32 orderID, bytes32 secret) returns()
func (_AtomicSwap *AtomicSwapTransactor) Redeem(opts *bind.TransactOpts, orderID [32]byte, secret [32]byte) (*types.Transaction, error) {
	return _AtomicSwap.contract.Transact(opts, "redeem", orderID, secret)
}

// Refund returns funds to the initiator once the timelock has elapsed.
//
// Solidity: function refund(bytes32 orderID) returns()
func (_AtomicSwap *AtomicSwapTransactor) Refund(opts *bind.TransactOpts, orderID [32]byte) (*types.Transaction, error) {
	return _AtomicSwap.contract.Transact(opts, "refund", orderID)
}

// AtomicSwapInitiated represents an Initiated event raised by the AtomicSwap contract.
type AtomicSwapInitiated struct {
	OrderID    [32]byte
	SecretHash [32]byte
	Amount     *big.Int
	Raw        types.Log
}

// AtomicSwapRedeemed represents a Redeemed event raised by the AtomicSwap contract.
type AtomicSwapRedeemed struct {
	OrderID    [32]byte
	SecretHash [32]byte
	Secret     [32]byte
	Raw        types.Log
}

// AtomicSwapRefunded represents a Refunded event raised by the AtomicSwap contract.
type AtomicSwapRefunded struct {
	OrderID [32]byte
	Raw     types.Log
}

// FilterInitiated is a free log retrieval operation binding the Initiated event.
//
// Solidity: event Initiated(bytes32 indexed orderID, bytes32 secretHash, uint256 amount)
func (_AtomicSwap *AtomicSwapFilterer) FilterInitiated(opts *bind.FilterOpts, orderID [][32]byte) ([]AtomicSwapInitiated, error) {
	var orderIDRule []interface{}
	for _, id := range orderID {
		orderIDRule = append(orderIDRule, id)
	}
	logs, sub, err := _AtomicSwap.contract.FilterLogs(opts, "Initiated", orderIDRule)
	if err != nil {
		return nil, err
	}
	defer sub.Unsubscribe()

	var out []AtomicSwapInitiated
	for _, log := range logs {
		var ev AtomicSwapInitiated
		if err := _AtomicSwap.contract.UnpackLog(&ev, "Initiated", log); err != nil {
			return nil, err
		}
		ev.Raw = log
		out = append(out, ev)
	}
	return out, nil
}

// FilterRedeemed is a free log retrieval operation binding the Redeemed event.
//
// Solidity: event Redeemed(bytes32 indexed orderID, bytes32 secretHash, bytes32 secret)
func (_AtomicSwap *AtomicSwapFilterer) FilterRedeemed(opts *bind.FilterOpts, orderID [][32]byte) ([]AtomicSwapRedeemed, error) {
	var orderIDRule []interface{}
	for _, id := range orderID {
		orderIDRule = append(orderIDRule, id)
	}
	logs, sub, err := _AtomicSwap.contract.FilterLogs(opts, "Redeemed", orderIDRule)
	if err != nil {
		return nil, err
	}
	defer sub.Unsubscribe()

	var out []AtomicSwapRedeemed
	for _, log := range logs {
		var ev AtomicSwapRedeemed
		if err := _AtomicSwap.contract.UnpackLog(&ev, "Redeemed", log); err != nil {
			return nil, err
		}
		ev.Raw = log
		out = append(out, ev)
	}
	return out, nil
}

// FilterRefunded is a free log retrieval operation binding the Refunded event.
//
// Solidity: event Refunded(bytes32 indexed orderID)
func (_AtomicSwap *AtomicSwapFilterer) FilterRefunded(opts *bind.FilterOpts, orderID [][32]byte) ([]AtomicSwapRefunded, error) {
	var orderIDRule []interface{}
	for _, id := range orderID {
		orderIDRule = append(orderIDRule, id)
	}
	logs, sub, err := _AtomicSwap.contract.FilterLogs(opts, "Refunded", orderIDRule)
	if err != nil {
		return nil, err
	}
	defer sub.Unsubscribe()

	var out []AtomicSwapRefunded
	for _, log := range logs {
		var ev AtomicSwapRefunded
		if err := _AtomicSwap.contract.UnpackLog(&ev, "Refunded", log); err != nil {
			return nil, err
		}
		ev.Raw = log
		out = append(out, ev)
	}
	return out, nil
}

// ParseInitiated parses a single log as an Initiated event, for the
// executor reconciling the exact log behind a known tx hash.
func (_AtomicSwap *AtomicSwapFilterer) ParseInitiated(log types.Log) (*AtomicSwapInitiated, error) {
	ev := new(AtomicSwapInitiated)
	if err := _AtomicSwap.contract.UnpackLog(ev, "Initiated", log); err != nil {
		return nil, err
	}
	ev.Raw = log
	return ev, nil
}

// ParseRedeemed parses a single log as a Redeemed event.
func (_AtomicSwap *AtomicSwapFilterer) ParseRedeemed(log types.Log) (*AtomicSwapRedeemed, error) {
	ev := new(AtomicSwapRedeemed)
	if err := _AtomicSwap.contract.UnpackLog(ev, "Redeemed", log); err != nil {
		return nil, err
	}
	ev.Raw = log
	return ev, nil
}
