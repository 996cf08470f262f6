package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prr-network/prr/internal/app/billing"
	"github.com/prr-network/prr/internal/domain"
)

func init() {
	rootCmd.AddCommand(quoteCmd)
	quoteCmd.Flags().StringP("type", "t", "sms", "Communication type: sms or voice")
	quoteCmd.Flags().IntP("size", "s", 0, "SMS size units or call seconds")
	quoteCmd.Flags().IntP("points", "p", domain.InitialPoints, "Caller loyalty points")
	quoteCmd.Flags().IntP("friends", "f", 0, "Caller friend count")
}

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a communication with the tariff",
	Example: `  prr quote --type voice --size 60 --points 80 --friends 4
  prr quote -t sms -s 3`,
	Args: cobra.NoArgs,
	RunE: runQuote,
}

func runQuote(cmd *cobra.Command, args []string) error {
	rawType, _ := cmd.Flags().GetString("type")
	size, _ := cmd.Flags().GetInt("size")
	points, _ := cmd.Flags().GetInt("points")
	friends, _ := cmd.Flags().GetInt("friends")

	typ, err := domain.ParseCommunicationType(rawType)
	if err != nil {
		return err
	}
	if size < 0 || points < 0 || friends < 0 {
		return fmt.Errorf("size, points and friends must not be negative")
	}

	cost := billing.Quote(typ, size, points, friends)
	fmt.Fprintf(cmd.OutOrStdout(), "%s size=%d points=%d friends=%d: %d cents\n",
		typ, size, points, friends, cost)
	return nil
}
