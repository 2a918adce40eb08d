// Package worker runs the bias-variance tradeoff computation off the caller's
// thread behind a request/response message protocol.
//
// A caller posts {type: "CALCULATE_TRADEOFF", params: {samples, noise}} and
// receives exactly one {type: "TRADEOFF_COMPLETE", data} or
// {type: "TRADEOFF_ERROR", error}. Only one computation runs at a time and
// only the latest parameters matter: a newer request cancels the running
// computation and replaces the pending one, and every replaced request is
// answered with a "superseded" error.
package worker

import (
	"github.com/YuminosukeSato/simulix/linear"
)

// MessageType はメッセージの種類
type MessageType string

const (
	// TypeCalculateTradeoff はトレードオフ曲線の計算要求
	TypeCalculateTradeoff MessageType = "CALCULATE_TRADEOFF"
	// TypeTradeoffComplete は計算結果
	TypeTradeoffComplete MessageType = "TRADEOFF_COMPLETE"
	// TypeTradeoffError は計算の失敗
	TypeTradeoffError MessageType = "TRADEOFF_ERROR"
)

// Request は計算要求。ID が空の場合は Submit が UUID を割り当てる
type Request struct {
	ID     string                `json:"id,omitempty"`
	Type   MessageType           `json:"type"`
	Params linear.TradeoffParams `json:"params"`
}

// Response は要求に対する唯一の応答
type Response struct {
	ID    string                `json:"id,omitempty"`
	Type  MessageType           `json:"type"`
	Data  *linear.TradeoffCurve `json:"data,omitempty"`
	Error string                `json:"error,omitempty"`
}

func completeResponse(id string, curve *linear.TradeoffCurve) Response {
	return Response{ID: id, Type: TypeTradeoffComplete, Data: curve}
}

func errorResponse(id string, err error) Response {
	return Response{ID: id, Type: TypeTradeoffError, Error: err.Error()}
}
