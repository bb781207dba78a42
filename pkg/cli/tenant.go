package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/uuid"

	"github.com/wardenhq/warden/pkg/tenants"
)

func newCreateTenantCommand() *Command {
	cmd := &Command{
		Name:        "create-tenant",
		Description: "Create or update a tenant",
		Flags:       flag.NewFlagSet("create-tenant", flag.ExitOnError),
		Run:         runCreateTenant,
	}

	cmd.Flags.String("id", "", "Tenant id (generated when omitted)")
	cmd.Flags.String("slug", "", "URL-safe tenant slug")
	cmd.Flags.String("name", "", "Display name")
	cmd.Flags.String("hostname", "", "Hostname for host-based resolution")
	addStoreFlags(cmd.Flags)

	return cmd
}

func runCreateTenant(args []string) error {
	cmd := newCreateTenantCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	id := cmd.Flags.Lookup("id").Value.String()
	slug := cmd.Flags.Lookup("slug").Value.String()
	name := cmd.Flags.Lookup("name").Value.String()
	hostname := cmd.Flags.Lookup("hostname").Value.String()

	if slug == "" {
		return fmt.Errorf("slug is required")
	}
	if name == "" {
		name = slug
	}
	if id == "" {
		id = uuid.NewString()
	}

	kv, err := connectStore(cmd.Flags)
	if err != nil {
		return fmt.Errorf("failed to connect to store: %w", err)
	}
	defer kv.Close()

	svc := tenants.NewService(kv)
	tenant := &tenants.Tenant{ID: id, Slug: slug, Name: name, Hostname: hostname}
	if err := svc.SaveTenant(context.Background(), tenant); err != nil {
		return fmt.Errorf("failed to save tenant: %w", err)
	}

	fmt.Printf("Tenant %s created (slug %s)\n", tenant.ID, tenant.Slug)
	return nil
}
