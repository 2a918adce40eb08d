package model

// EstimatorState はモデルの学習状態を表す
type EstimatorState int

const (
	// NotFitted はモデルが未学習の状態
	NotFitted EstimatorState = iota
	// Fitted はモデルが学習済みの状態
	Fitted
)

// BaseEstimator は全ての推定器の基底となる構造体
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted はモデルが学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted はモデルを学習済み状態に設定する
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset はモデルを初期状態にリセットする
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}

// Phase は反復シミュレーション（EM、焼きなまし）の状態機械の段階を表す
type Phase string

const (
	// PhaseUninitialized はパラメータが未初期化の状態
	PhaseUninitialized Phase = "uninitialized"
	// PhaseInitialized は初期化済みで反復前の状態
	PhaseInitialized Phase = "initialized"
	// PhaseRunning は反復中の状態
	PhaseRunning Phase = "running"
	// PhaseConverged は収束判定を満たして終了した状態
	PhaseConverged Phase = "converged"
	// PhaseMaxIterationsReached は反復上限に達して終了した状態
	PhaseMaxIterationsReached Phase = "max_iterations_reached"
)

// Terminal は状態がこれ以上進まない終端状態かどうかを返す
func (p Phase) Terminal() bool {
	return p == PhaseConverged || p == PhaseMaxIterationsReached
}
