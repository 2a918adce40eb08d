package main

import (
	"github.com/YuminosukeSato/simulix/chart"
	"github.com/YuminosukeSato/simulix/linear"
	"github.com/YuminosukeSato/simulix/metrics"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
)

type tradeoffOutput struct {
	*linear.TradeoffCurve
	Noise float64 `json:"noise"`
}

func (a *app) tradeoffCmd() *cobra.Command {
	var (
		samples int
		noise   float64
		trials  int
	)
	cmd := &cobra.Command{
		Use:   "tradeoff",
		Short: "Compute the bias-variance tradeoff curve over degrees 1-15",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.cfg.Tradeoff
			if cmd.Flags().Changed("samples") {
				c.SampleSize = samples
			}
			if cmd.Flags().Changed("noise") {
				c.NoiseLevel = noise
			}
			if cmd.Flags().Changed("trials") {
				c.Trials = trials
			}
			c = c.Clamp()

			curve, err := linear.CalculateTradeoffCurve(cmd.Context(), c.Params(), a.source())
			if err != nil {
				return err
			}
			if err := a.render(func() (*plot.Plot, error) { return chart.TradeoffPlot(curve) }); err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), tradeoffOutput{TradeoffCurve: curve, Noise: curve.Noise})
		},
	}
	cmd.Flags().IntVar(&samples, "samples", 0, "Training samples per trial (20-200)")
	cmd.Flags().Float64Var(&noise, "noise", 0, "Noise standard deviation (0.05-1.0)")
	cmd.Flags().IntVar(&trials, "trials", 0, "Independent trials per degree")
	return cmd
}

type fitOutput struct {
	Degree   int       `json:"degree"`
	Weights  []float64 `json:"weights"`
	Fallback bool      `json:"fallback"`
	TrainMSE float64   `json:"train_mse"`
	GridMSE  float64   `json:"grid_mse"`
}

func (a *app) fitCmd() *cobra.Command {
	var (
		degree  int
		samples int
		noise   float64
	)
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit one polynomial to a fresh noisy sample of the true function",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.cfg.Tradeoff
			if cmd.Flags().Changed("degree") {
				c.PolynomialDegree = degree
			}
			if cmd.Flags().Changed("samples") {
				c.SampleSize = samples
			}
			if cmd.Flags().Changed("noise") {
				c.NoiseLevel = noise
			}
			c = c.Clamp()

			src := a.source()
			x, y, err := linear.GenerateTrainingData(src, c.SampleSize, c.NoiseLevel)
			if err != nil {
				return err
			}
			model, err := linear.FitPolynomialModel(x, y, c.PolynomialDegree, linear.WithRandomSource(src))
			if err != nil {
				return err
			}

			trainMSE, err := metrics.MSE(y, model.PredictAll(x))
			if err != nil {
				return err
			}
			grid := linear.EvaluationGrid()
			truth := make([]float64, len(grid))
			for i, g := range grid {
				truth[i] = linear.TrueFunction(g)
			}
			gridMSE, err := metrics.MSE(truth, model.PredictAll(grid))
			if err != nil {
				return err
			}

			if err := a.render(func() (*plot.Plot, error) { return chart.FitPlot(x, y, model) }); err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), fitOutput{
				Degree:   model.Degree(),
				Weights:  model.Weights,
				Fallback: model.Fallback,
				TrainMSE: trainMSE,
				GridMSE:  gridMSE,
			})
		},
	}
	cmd.Flags().IntVar(&degree, "degree", 0, "Polynomial degree (1-15)")
	cmd.Flags().IntVar(&samples, "samples", 0, "Training samples (20-200)")
	cmd.Flags().Float64Var(&noise, "noise", 0, "Noise standard deviation (0.05-1.0)")
	return cmd
}
