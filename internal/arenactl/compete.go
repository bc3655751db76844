package arenactl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/assemblymechs/arena-core/internal/bus"
	"github.com/assemblymechs/arena-core/internal/protocol"
)

var (
	competeAccount string
	competeToken   string
)

var competeCmd = &cobra.Command{
	Use:   "compete",
	Short: "Exchange a one-time token for durable arena credentials",
	Long: `Redeems a one-time token minted by an operator for durable arena
credentials and writes them to ~/.wasmdome/arena.creds.

Example:
  arenactl compete --account my-bot --token abc123`,
	RunE: runCompete,
}

func init() {
	competeCmd.Flags().StringVar(&competeAccount, "account", "", "account id the token was minted for (required)")
	competeCmd.Flags().StringVar(&competeToken, "token", "", "one-time token to redeem (required)")
	_ = competeCmd.MarkFlagRequired("account")
	_ = competeCmd.MarkFlagRequired("token")
}

func runCompete(cmd *cobra.Command, args []string) error {
	b, err := connectBus()
	if err != nil {
		return err
	}
	defer b.Close()

	req := protocol.CredsClaimRequest{AccountID: competeAccount, Token: competeToken}
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode claim request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := b.Request(ctx, protocol.SubjectCredsClaim, payload)
	if err != nil {
		return fmt.Errorf("claim credentials: %w", err)
	}

	var creds protocol.ArenaCreds
	if err := json.Unmarshal(resp, &creds); err != nil {
		return fmt.Errorf("decode credentials: %w", err)
	}

	path, err := writeCreds(creds)
	if err != nil {
		return err
	}

	fmt.Printf("credentials written to %s\n", path)
	return nil
}

func writeCreds(creds protocol.ArenaCreds) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	dir := filepath.Join(home, ".wasmdome")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create credentials directory: %w", err)
	}

	path := filepath.Join(dir, "arena.creds")
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode credentials: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write credentials: %w", err)
	}

	return path, nil
}

func connectBus() (bus.Bus, error) {
	if natsURL == "" {
		return nil, fmt.Errorf("--nats-url is required to reach the arena bus")
	}
	return bus.NewNATSBus(natsURL)
}
