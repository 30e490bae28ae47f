package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flipfinder/config"
	"flipfinder/internal/database"
)

func newDealsCmd() *cobra.Command {
	var (
		runID    string
		limit    int
		minScore float64
		minROI   float64
		viable   bool
		rule70   bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "deals",
		Short: "List stored deals from previous runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			deals, err := db.GetTopDeals(database.DealFilter{
				RunID:              runID,
				Limit:              limit,
				MinScore:           minScore,
				MinROI:             minROI,
				MeetsCriteriaOnly:  viable,
				Meets70PercentOnly: rule70,
			})
			if err != nil {
				return err
			}

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(deals)
			}

			if len(deals) == 0 {
				fmt.Println("No stored deals match the filters.")
				return nil
			}
			for i, deal := range deals {
				fmt.Printf("%d. %s - Score: %.2f, ROI: %.2f%%, Profit: $%.2f\n",
					i+1, deal.Address, deal.Score, deal.ROI, deal.PotentialProfit)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "only deals from this analysis run id")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum deals to list")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "minimum deal score")
	cmd.Flags().Float64Var(&minROI, "min-roi", 0, "minimum ROI percentage")
	cmd.Flags().BoolVar(&viable, "viable", false, "only deals meeting the ROI criteria")
	cmd.Flags().BoolVar(&rule70, "rule70", false, "only deals meeting the 70 percent rule")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")

	return cmd
}
