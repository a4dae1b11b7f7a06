package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"tokensale/internal/sale"

	"github.com/fatih/color"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptOptional(label string) (string, error) {
	fmt.Printf("%s: ", label)
	text, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func promptChoice(label string, options []string, defaultValue string) (string, error) {
	normalized := make(map[string]struct{}, len(options))
	for _, opt := range options {
		normalized[strings.ToLower(strings.TrimSpace(opt))] = struct{}{}
	}
	for {
		fmt.Printf("%s (%s) [%s]: ", label, strings.Join(options, "/"), defaultValue)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.ToLower(strings.TrimSpace(text))
		if text == "" {
			text = strings.ToLower(strings.TrimSpace(defaultValue))
		}
		if _, ok := normalized[text]; ok {
			return text, nil
		}
		printWarn("Invalid option. Please pick one of the listed values.")
	}
}

func promptInt64(label string, min int64) (int64, error) {
	for {
		text, err := promptRequired(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			printWarn("Enter a whole number.")
			continue
		}
		if v < min {
			printWarn(fmt.Sprintf("Value must be >= %d", min))
			continue
		}
		return v, nil
	}
}

func renderSaleStatus(raw map[string]any) error {
	cfg, err := decodeInto[sale.Config](raw)
	if err != nil {
		return err
	}

	accent.Printf("\n== SALE (%s) ==\n", strings.ToUpper(cfg.Stage.String()))
	printInfo(fmt.Sprintf("Admin:            %s", cfg.Admin))
	printInfo(fmt.Sprintf("Token mint:       %s", cfg.TokenMint))
	printInfo(fmt.Sprintf("Current price:    %s per token", formatUSDMicros(cfg.CurrentPrice)))
	printInfo(fmt.Sprintf("Private price:    %s", formatUSDMicros(cfg.PrivatePrice)))
	printInfo(fmt.Sprintf("Public price:     %s", formatUSDMicros(cfg.PublicPrice)))
	if cfg.PresaleStart > 0 {
		start := time.Unix(cfg.PresaleStart, 0).UTC()
		printInfo(fmt.Sprintf("Presale start:    %s", start.Format(time.RFC3339)))
		printInfo(fmt.Sprintf("Private ends:     %s", start.Add(time.Duration(cfg.PrivateDuration)*time.Second).Format(time.RFC3339)))
		printInfo(fmt.Sprintf("Public ends:      %s", start.Add(time.Duration(cfg.PrivateDuration+cfg.PublicDuration)*time.Second).Format(time.RFC3339)))
	}
	printInfo(fmt.Sprintf("Total sold:       %s tokens", comma(cfg.TotalSold)))
	printInfo(fmt.Sprintf("Rewards booked:   %s tokens", comma(cfg.ReferralCharged)))
	printInfo(fmt.Sprintf("Referral rates:   regular %d%%, influencer %d%%", cfg.RegularRate, cfg.InfluencerRate))
	if cfg.Finalized {
		printWarn("Sale is finalized.")
	}
	return nil
}

func renderStage(raw map[string]any) error {
	stage, _ := raw["stage"].(string)
	printSuccess(fmt.Sprintf("Stage is now %s.", stage))
	return nil
}

func renderBalances(raw map[string]any) error {
	b, err := decodeInto[sale.Balances](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== REMAINING SUPPLY ==")
	printInfo(fmt.Sprintf("Sellable:  %s tokens", formatTokenUnits(b.Sellable)))
	printInfo(fmt.Sprintf("Rewards:   %s tokens", formatTokenUnits(b.Rewards)))
	return nil
}

func renderReceipt(raw map[string]any) error {
	rcpt, err := decodeInto[sale.Receipt](raw)
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("Purchase recorded: %s tokens to %s at %s.",
		comma(rcpt.Tokens), rcpt.Buyer, formatUSDMicros(rcpt.PriceMicros)))
	printInfo(fmt.Sprintf("Paid %s (%s), worth $%s.", comma(rcpt.PaymentAmount), rcpt.Method, comma(rcpt.USDAmount)))
	switch {
	case rcpt.RewardCredited:
		printInfo(fmt.Sprintf("Referral reward: %s tokens credited to %s.", comma(rcpt.RewardTokens), rcpt.Referrer))
	case rcpt.RewardDeclined != "":
		printWarn(fmt.Sprintf("Referral reward declined: %s", rcpt.RewardDeclined))
	}
	return nil
}

func renderSweep(raw map[string]any) error {
	sweep, err := decodeInto[sale.SweepResult](raw)
	if err != nil {
		return err
	}
	printSuccess("Sale finalized.")
	printInfo(fmt.Sprintf("Unsold tokens swept:  %s", formatTokenUnits(sweep.UnsoldTokens)))
	printInfo(fmt.Sprintf("Unsold rewards swept: %s", formatTokenUnits(sweep.UnsoldRewards)))
	return nil
}

func decodeInto[T any](in any) (T, error) {
	var out T
	raw, err := json.Marshal(in)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

// formatUSDMicros renders a micro-USD price as dollars.
func formatUSDMicros(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := v / sale.PriceScale
	frac := v % sale.PriceScale
	return fmt.Sprintf("%s$%s.%06d", sign, comma(whole), frac)
}

// formatTokenUnits renders smallest units as whole tokens.
func formatTokenUnits(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := v / sale.TokenDecimals
	frac := v % sale.TokenDecimals
	if frac == 0 {
		return sign + comma(whole)
	}
	return fmt.Sprintf("%s%s.%09d", sign, comma(whole), frac)
}

func comma(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		if len(s) > pre {
			b.WriteByte(',')
		}
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}
