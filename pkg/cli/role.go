package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/wardenhq/warden/pkg/authz"
	"github.com/wardenhq/warden/pkg/roles"
)

func newCreateRoleCommand() *Command {
	cmd := &Command{
		Name:        "create-role",
		Description: "Create or update a global role",
		Flags:       flag.NewFlagSet("create-role", flag.ExitOnError),
		Run:         runCreateRole,
	}

	cmd.Flags.String("id", "", "Role id")
	cmd.Flags.String("name", "", "Display name")
	cmd.Flags.String("grants", "", "Comma-separated resource:permission pairs, e.g. role:write,settings:read")
	addStoreFlags(cmd.Flags)

	return cmd
}

func runCreateRole(args []string) error {
	cmd := newCreateRoleCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	id := cmd.Flags.Lookup("id").Value.String()
	name := cmd.Flags.Lookup("name").Value.String()
	rawGrants := cmd.Flags.Lookup("grants").Value.String()

	if id == "" {
		return fmt.Errorf("id is required")
	}
	if name == "" {
		name = id
	}

	grants, err := parseGrants(rawGrants)
	if err != nil {
		return err
	}

	kv, err := connectStore(cmd.Flags)
	if err != nil {
		return fmt.Errorf("failed to connect to store: %w", err)
	}
	defer kv.Close()

	svc := roles.NewService(kv)
	role := &authz.GlobalRole{ID: id, Name: name, Grants: grants}
	if err := svc.SaveGlobalRole(context.Background(), role); err != nil {
		return fmt.Errorf("failed to save role: %w", err)
	}

	fmt.Printf("Role %s saved with %d grant(s)\n", role.ID, len(role.Grants))
	return nil
}

// parseGrants parses "resource:permission" pairs separated by commas
func parseGrants(raw string) ([]authz.Grant, error) {
	if raw == "" {
		return nil, nil
	}

	var grants []authz.Grant
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid grant %q (want resource:permission)", pair)
		}
		grants = append(grants, authz.Grant{
			Resource:   authz.ResourceType(parts[0]),
			Permission: authz.Permission(parts[1]),
		})
	}
	return grants, nil
}

func newAssignRoleCommand() *Command {
	cmd := &Command{
		Name:        "assign-role",
		Description: "Assign a global role to a user",
		Flags:       flag.NewFlagSet("assign-role", flag.ExitOnError),
		Run:         runAssignRole,
	}

	cmd.Flags.String("role", "", "Role id")
	cmd.Flags.String("user", "", "User id")
	addStoreFlags(cmd.Flags)

	return cmd
}

func runAssignRole(args []string) error {
	cmd := newAssignRoleCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	roleID := cmd.Flags.Lookup("role").Value.String()
	userID := cmd.Flags.Lookup("user").Value.String()
	if roleID == "" || userID == "" {
		return fmt.Errorf("role and user are required")
	}

	kv, err := connectStore(cmd.Flags)
	if err != nil {
		return fmt.Errorf("failed to connect to store: %w", err)
	}
	defer kv.Close()

	svc := roles.NewService(kv)
	if err := svc.AssignGlobalRole(context.Background(), roleID, userID); err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}

	fmt.Printf("Role %s assigned to %s\n", roleID, userID)
	return nil
}
