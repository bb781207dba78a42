package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/google/uuid"

	"github.com/wardenhq/warden/pkg/store"
)

func newCreateSessionCommand() *Command {
	cmd := &Command{
		Name:        "create-session",
		Description: "Create a session token for a user",
		Flags:       flag.NewFlagSet("create-session", flag.ExitOnError),
		Run:         runCreateSession,
	}

	cmd.Flags.String("user", "", "User id")
	cmd.Flags.String("token", "", "Session token (generated when omitted)")
	addStoreFlags(cmd.Flags)

	return cmd
}

func runCreateSession(args []string) error {
	cmd := newCreateSessionCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	userID := cmd.Flags.Lookup("user").Value.String()
	token := cmd.Flags.Lookup("token").Value.String()
	if userID == "" {
		return fmt.Errorf("user is required")
	}
	if token == "" {
		token = uuid.NewString()
	}

	kv, err := connectStore(cmd.Flags)
	if err != nil {
		return fmt.Errorf("failed to connect to store: %w", err)
	}
	defer kv.Close()

	ctx := context.Background()
	if err := kv.Set(ctx, store.SessionKey(token), userID); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	// Ensure a user record exists so the first-run setup probe sees the user.
	record, _ := json.Marshal(map[string]string{"id": userID})
	if err := kv.Set(ctx, store.UserKey(userID), string(record)); err != nil {
		return fmt.Errorf("failed to save user record: %w", err)
	}

	fmt.Printf("Session created for %s: %s\n", userID, token)
	return nil
}
