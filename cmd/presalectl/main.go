package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	cl "tokensale/internal/cli"
	"tokensale/internal/config"
	"tokensale/internal/sale"

	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "presalectl",
		Short:        "Presale operator CLI",
		SilenceUsage: true,
	}

	root.AddCommand(
		newLoginCmd(&apiBase),
		newLogoutCmd(),
		newStatusCmd(&apiBase),
		newBalancesCmd(&apiBase),
		newInitCmd(&apiBase),
		newStageCmd(&apiBase),
		newPeriodCmd(&apiBase),
		newPriceCmd(&apiBase),
		newRatesCmd(&apiBase),
		newBuyCmd(&apiBase),
		newBuyStableCmd(&apiBase),
		newWithdrawCmd(&apiBase),
		newRefillCmd(&apiBase),
		newFinalizeCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func requireToken() (string, error) {
	sess, err := cl.LoadSession()
	if err != nil {
		return "", fmt.Errorf("login required: %w", err)
	}
	return sess.Token, nil
}

func newLoginCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Save the service token for later commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := promptRequired("Service token")
			if err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{BaseURL: *apiBase, Token: token}); err != nil {
				return err
			}
			printSuccess("Token saved.")
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the saved service token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cl.ClearSession(); err != nil {
				return err
			}
			printSuccess("Logged out.")
			return nil
		},
	}
}

func newStatusCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the sale lifecycle and counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).SaleStatus(ctx)
			if err != nil {
				return err
			}
			return renderSaleStatus(out)
		},
	}
}

func newBalancesCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Show remaining sellable and reward supply",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).SaleBalances(ctx)
			if err != nil {
				return err
			}
			return renderBalances(out)
		},
	}
}

func newInitCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the sale",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken()
			if err != nil {
				return err
			}
			merchant, err := promptRequired("Merchant wallet")
			if err != nil {
				return err
			}
			supply, err := promptRequired("Supply wallet")
			if err != nil {
				return err
			}
			reward, err := promptRequired("Reward wallet")
			if err != nil {
				return err
			}
			liquidity, err := promptRequired("Liquidity wallet")
			if err != nil {
				return err
			}
			mint, err := promptRequired("Token mint")
			if err != nil {
				return err
			}
			privatePrice, err := promptInt64("Private price (micros)", 1)
			if err != nil {
				return err
			}
			publicPrice, err := promptInt64("Public price (micros)", 1)
			if err != nil {
				return err
			}
			privateDays, err := promptInt64("Private duration (days)", 0)
			if err != nil {
				return err
			}
			publicDays, err := promptInt64("Public duration (days)", 0)
			if err != nil {
				return err
			}
			regularRate, err := promptInt64("Regular referral rate (%)", 0)
			if err != nil {
				return err
			}
			influencerRate, err := promptInt64("Influencer referral rate (%)", 0)
			if err != nil {
				return err
			}
			supplyCap, err := promptInt64("Supply cap (tokens, 0 for none)", 0)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Initialize(ctx, token, map[string]any{
				"merchant_wallet":       merchant,
				"supply_wallet":         supply,
				"reward_wallet":         reward,
				"liquidity_wallet":      liquidity,
				"token_mint":            mint,
				"private_price":         privatePrice,
				"public_price":          publicPrice,
				"private_duration_days": privateDays,
				"public_duration_days":  publicDays,
				"regular_rate":          regularRate,
				"influencer_rate":       influencerRate,
				"supply_cap":            supplyCap,
			})
			if err != nil {
				return err
			}
			printSuccess("Sale initialized.")
			return renderSaleStatus(out)
		},
	}
}

func newStageCmd(apiBase *string) *cobra.Command {
	stage := &cobra.Command{
		Use:   "stage",
		Short: "Manage the sale stage",
	}
	stage.AddCommand(
		&cobra.Command{
			Use:   "advance",
			Short: "Advance the stage one step forward",
			RunE: func(cmd *cobra.Command, args []string) error {
				token, err := requireToken()
				if err != nil {
					return err
				}
				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				defer cancel()
				out, err := newClient(apiBase).AdvanceStage(ctx, token)
				if err != nil {
					return err
				}
				return renderStage(out)
			},
		},
		&cobra.Command{
			Use:   "set <stage>",
			Short: "Force a specific stage",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				token, err := requireToken()
				if err != nil {
					return err
				}
				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				defer cancel()
				out, err := newClient(apiBase).SetStage(ctx, token, args[0])
				if err != nil {
					return err
				}
				return renderStage(out)
			},
		},
		&cobra.Command{
			Use:   "refresh",
			Short: "Recompute the stage from the clock",
			RunE: func(cmd *cobra.Command, args []string) error {
				token, err := requireToken()
				if err != nil {
					return err
				}
				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				defer cancel()
				out, err := newClient(apiBase).RefreshStage(ctx, token)
				if err != nil {
					return err
				}
				return renderStage(out)
			},
		},
	)
	return stage
}

func newPeriodCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "period <private_days> <public_days>",
		Short: "Update the stage durations",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken()
			if err != nil {
				return err
			}
			privateDays, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid private days: %w", err)
			}
			publicDays, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid public days: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if _, err := newClient(apiBase).UpdatePeriod(ctx, token, privateDays, publicDays); err != nil {
				return err
			}
			printSuccess("Sale period updated.")
			return nil
		},
	}
}

func newPriceCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "price <micros>",
		Short: "Update the active stage price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken()
			if err != nil {
				return err
			}
			price, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid price: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if _, err := newClient(apiBase).UpdatePrice(ctx, token, price); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Price updated to %s per token.", formatUSDMicros(price)))
			return nil
		},
	}
}

func newRatesCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rates <regular> <influencer>",
		Short: "Update the referral reward rates",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken()
			if err != nil {
				return err
			}
			regular, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid regular rate: %w", err)
			}
			influencer, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid influencer rate: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if _, err := newClient(apiBase).SetReferralRates(ctx, token, regular, influencer); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Referral rates updated: regular %d%%, influencer %d%%.", regular, influencer))
			return nil
		},
	}
}

func newBuyCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "buy",
		Short: "Record a native-payment purchase",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken()
			if err != nil {
				return err
			}
			buyer, err := promptRequired("Buyer wallet")
			if err != nil {
				return err
			}
			method, err := promptChoice("Payment method", []string{string(sale.PaymentNative), string(sale.PaymentExternal)}, string(sale.PaymentNative))
			if err != nil {
				return err
			}
			amount, err := promptInt64("Payment amount (smallest units)", 1)
			if err != nil {
				return err
			}
			unitPrice, err := promptInt64("Payment asset USD price", 1)
			if err != nil {
				return err
			}
			referrer, err := promptOptional("Referrer wallet (optional)")
			if err != nil {
				return err
			}
			influencer := false
			if referrer != "" {
				choice, err := promptChoice("Influencer referrer", []string{"yes", "no"}, "no")
				if err != nil {
					return err
				}
				influencer = choice == "yes"
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Buy(ctx, token, map[string]any{
				"buyer":          buyer,
				"payment_method": method,
				"payment_amount": amount,
				"unit_price_usd": unitPrice,
				"referrer":       referrer,
				"is_influencer":  influencer,
			})
			if err != nil {
				return err
			}
			return renderReceipt(out)
		},
	}
}

func newBuyStableCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "buy-stable",
		Short: "Record a stable-asset purchase",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken()
			if err != nil {
				return err
			}
			buyer, err := promptRequired("Buyer wallet")
			if err != nil {
				return err
			}
			mint, err := promptRequired("Stable mint")
			if err != nil {
				return err
			}
			amount, err := promptInt64("Stable amount (whole units)", 1)
			if err != nil {
				return err
			}
			referrer, err := promptOptional("Referrer wallet (optional)")
			if err != nil {
				return err
			}
			influencer := false
			if referrer != "" {
				choice, err := promptChoice("Influencer referrer", []string{"yes", "no"}, "no")
				if err != nil {
					return err
				}
				influencer = choice == "yes"
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).BuyStable(ctx, token, map[string]any{
				"buyer":         buyer,
				"stable_mint":   mint,
				"stable_amount": amount,
				"referrer":      referrer,
				"is_influencer": influencer,
			})
			if err != nil {
				return err
			}
			return renderReceipt(out)
		},
	}
}

func newWithdrawCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <referrer> <tokens>",
		Short: "Withdraw accrued referral rewards",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken()
			if err != nil {
				return err
			}
			tokens, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid token amount: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if _, err := newClient(apiBase).WithdrawRewards(ctx, token, args[0], tokens); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Withdrew %s reward tokens to %s.", comma(tokens), args[0]))
			return nil
		},
	}
}

func newRefillCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "refill <tokens>",
		Short: "Mint additional reward-pool inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken()
			if err != nil {
				return err
			}
			tokens, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid token amount: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if _, err := newClient(apiBase).RefillTreasury(ctx, token, tokens); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Treasury refilled with %s tokens.", comma(tokens)))
			return nil
		},
	}
}

func newFinalizeCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "finalize",
		Short: "Sweep unsold supply to the liquidity wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Finalize(ctx, token)
			if err != nil {
				return err
			}
			return renderSweep(out)
		},
	}
}
