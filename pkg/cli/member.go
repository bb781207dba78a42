package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/wardenhq/warden/pkg/authz"
	"github.com/wardenhq/warden/pkg/tenants"
)

func newAddMemberCommand() *Command {
	cmd := &Command{
		Name:        "add-member",
		Description: "Add a user to a tenant with a built-in role",
		Flags:       flag.NewFlagSet("add-member", flag.ExitOnError),
		Run:         runAddMember,
	}

	cmd.Flags.String("user", "", "User id")
	cmd.Flags.String("tenant", "", "Tenant id")
	cmd.Flags.String("role", "viewer", "Tenant role: admin, editor, or viewer")
	addStoreFlags(cmd.Flags)

	return cmd
}

func runAddMember(args []string) error {
	cmd := newAddMemberCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	userID := cmd.Flags.Lookup("user").Value.String()
	tenantID := cmd.Flags.Lookup("tenant").Value.String()
	role := authz.TenantRole(cmd.Flags.Lookup("role").Value.String())

	if userID == "" || tenantID == "" {
		return fmt.Errorf("user and tenant are required")
	}
	switch role {
	case authz.TenantRoleAdmin, authz.TenantRoleEditor, authz.TenantRoleViewer:
	default:
		return fmt.Errorf("invalid tenant role: %s", role)
	}

	kv, err := connectStore(cmd.Flags)
	if err != nil {
		return fmt.Errorf("failed to connect to store: %w", err)
	}
	defer kv.Close()

	memberships := tenants.NewMembershipService(kv, tenants.NewService(kv))
	if err := memberships.AddMembership(context.Background(), userID, tenantID, role); err != nil {
		return fmt.Errorf("failed to add membership: %w", err)
	}

	fmt.Printf("User %s added to tenant %s as %s\n", userID, tenantID, role)
	return nil
}
