package main

import (
	"encoding/json"
	"os"

	"github.com/YuminosukeSato/simulix/anneal"
	"github.com/YuminosukeSato/simulix/chart"
	"github.com/YuminosukeSato/simulix/pkg/errors"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
)

func (a *app) annealCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anneal",
		Short: "Simulated annealing engines",
		Long: `tsp minimizes the great-circle length of a tour; toy maximizes a
polynomial over r-bit integers.`,
	}
	cmd.AddCommand(a.tspCmd(), a.toyCmd())
	return cmd
}

type tspOutput struct {
	Cities          []anneal.City   `json:"cities"`
	Final           anneal.TSPState `json:"final"`
	InitialDistance float64         `json:"initial_distance"`
	Improvement     float64         `json:"improvement_km"`
	TracePoints     int             `json:"trace_points"`
}

// loadCities は {id, x, y} の JSON 配列を読む
func loadCities(path string) ([]anneal.City, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read cities %s", path)
	}
	var cities []anneal.City
	if err := json.Unmarshal(data, &cities); err != nil {
		return nil, errors.Wrapf(err, "decode cities %s", path)
	}
	return cities, nil
}

func (a *app) tspCmd() *cobra.Command {
	var (
		n          int
		citiesFile string
		temp       float64
		rate       float64
		iters      int
		tourPlot   string
	)
	cmd := &cobra.Command{
		Use:   "tsp",
		Short: "Anneal a traveling-salesman tour (minimizes distance in km)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.cfg.TSP
			if cmd.Flags().Changed("cities") {
				c.Cities = n
			}
			if cmd.Flags().Changed("temp") {
				c.InitialTemperature = temp
			}
			if cmd.Flags().Changed("rate") {
				c.CoolingRate = rate
			}
			if cmd.Flags().Changed("iters") {
				c.TotalIterations = iters
			}
			c = c.Clamp()

			src := a.source()
			var cities []anneal.City
			if citiesFile != "" {
				var err error
				if cities, err = loadCities(citiesFile); err != nil {
					return err
				}
			} else {
				cities = anneal.RandomCities(src, c.Cities)
			}

			final, trace, err := anneal.RunTSP(src, cities, c.Params())
			if err != nil {
				return err
			}

			if err := a.render(func() (*plot.Plot, error) { return chart.AnnealingTrace("TSP distance (km)", trace) }); err != nil {
				return err
			}
			if tourPlot != "" && len(cities) >= 3 {
				p, err := chart.TourPlot(cities, final.BestPath)
				if err != nil {
					return err
				}
				if err := chart.Save(p, tourPlot); err != nil {
					return err
				}
			}

			out := tspOutput{Cities: cities, Final: final, TracePoints: len(trace.Best)}
			if len(trace.Best) > 0 {
				out.InitialDistance = trace.Best[0]
				out.Improvement = trace.Best[0] - final.BestDistance
			}
			return emit(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().IntVar(&n, "cities", 0, "Number of random cities (3-200)")
	cmd.Flags().StringVar(&citiesFile, "cities-file", "", "JSON file with [{id, x, y}] cities in [0,1]")
	cmd.Flags().Float64Var(&temp, "temp", 0, "Initial temperature")
	cmd.Flags().Float64Var(&rate, "rate", 0, "Cooling rate in (0,1)")
	cmd.Flags().IntVar(&iters, "iters", 0, "Total iterations")
	cmd.Flags().StringVar(&tourPlot, "tour-plot", "", "Write the best tour to this image file")
	return cmd
}

type toyOutput struct {
	Params  anneal.ToyParams    `json:"params"`
	Final   anneal.ToyState     `json:"final"`
	Optimum *anneal.Enumeration `json:"optimum,omitempty"`
}

func (a *app) toyCmd() *cobra.Command {
	var (
		r        int
		iters    int
		temp     float64
		rate     float64
		neighbor string
		schedule string
		coeffs   []float64
	)
	cmd := &cobra.Command{
		Use:   "toy",
		Short: "Anneal an r-bit integer to maximize a polynomial",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.cfg.Toy
			if cmd.Flags().Changed("r") {
				c.R = r
			}
			if cmd.Flags().Changed("iters") {
				c.MaxIterations = iters
			}
			if cmd.Flags().Changed("temp") {
				c.InitialTemperature = temp
			}
			if cmd.Flags().Changed("rate") {
				c.CoolingRate = rate
			}
			if cmd.Flags().Changed("neighbor") {
				c.NeighborType = anneal.NeighborType(neighbor)
			}
			if cmd.Flags().Changed("schedule") {
				c.CoolingSchedule = anneal.Schedule(schedule)
			}
			if cmd.Flags().Changed("coeffs") {
				c.Coefficients = coeffs
			}
			p := c.Clamp().Params()

			final, trace, err := anneal.RunToy(a.source(), p)
			if err != nil {
				return err
			}
			out := toyOutput{Params: p, Final: final}
			if p.Bits <= anneal.MaxEnumerateBits {
				en, err := anneal.Enumerate(p)
				if err != nil {
					return err
				}
				out.Optimum = &en
			}

			if err := a.render(func() (*plot.Plot, error) { return chart.AnnealingTrace("Toy objective", trace) }); err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().IntVar(&r, "r", 0, "Bit length of the state")
	cmd.Flags().IntVar(&iters, "iters", 0, "Maximum iterations")
	cmd.Flags().Float64Var(&temp, "temp", 0, "Initial temperature")
	cmd.Flags().Float64Var(&rate, "rate", 0, "Cooling rate in (0,1)")
	cmd.Flags().StringVar(&neighbor, "neighbor", "", "Neighbor: single_bit_flip, two_bit_flip or random_walk")
	cmd.Flags().StringVar(&schedule, "schedule", "", "Cooling schedule: geometric, linear or logarithmic")
	cmd.Flags().Float64SliceVar(&coeffs, "coeffs", nil, "Polynomial coefficients by increasing power, e.g. 2,3,-0.1")
	return cmd
}
