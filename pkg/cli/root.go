package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/wardenhq/warden/pkg/store"
)

// Command represents a CLI command
type Command struct {
	Name        string
	Description string
	Run         func(args []string) error
	Subcommands map[string]*Command
	Flags       *flag.FlagSet
}

// NewRootCommand creates the root command
func NewRootCommand() *Command {
	root := &Command{
		Name:        "wardenctl",
		Description: "Warden - multi-tenant authorization admin CLI",
		Subcommands: make(map[string]*Command),
		Flags:       flag.NewFlagSet("wardenctl", flag.ExitOnError),
	}

	root.Subcommands["create-tenant"] = newCreateTenantCommand()
	root.Subcommands["create-role"] = newCreateRoleCommand()
	root.Subcommands["assign-role"] = newAssignRoleCommand()
	root.Subcommands["add-member"] = newAddMemberCommand()
	root.Subcommands["create-session"] = newCreateSessionCommand()

	return root
}

// Execute runs the command
func (c *Command) Execute() error {
	args := os.Args[1:]
	if len(args) == 0 {
		return c.usage()
	}

	if args[0] == "-h" || args[0] == "--help" {
		return c.usage()
	}

	if subcmd, ok := c.Subcommands[args[0]]; ok {
		return subcmd.Run(args[1:])
	}

	return fmt.Errorf("unknown command: %s", args[0])
}

// usage prints the command usage
func (c *Command) usage() error {
	fmt.Printf("Usage: %s <command> [args]\n\n", c.Name)
	fmt.Printf("Commands:\n")
	for name, cmd := range c.Subcommands {
		fmt.Printf("  %-15s %s\n", name, cmd.Description)
	}
	return nil
}

// addStoreFlags registers the flags every command that touches the store needs
func addStoreFlags(fs *flag.FlagSet) {
	fs.String("redis", "redis://localhost:6379", "Redis URL")
	fs.String("redis-password", "", "Redis password")
	fs.Bool("test-mode", false, "Operate on test-prefixed keys")
}

// connectStore opens the KV store described by the command's store flags
func connectStore(fs *flag.FlagSet) (*store.RedisStore, error) {
	cfg := store.Config{
		URL:      fs.Lookup("redis").Value.String(),
		Password: fs.Lookup("redis-password").Value.String(),
	}
	if fs.Lookup("test-mode").Value.String() == "true" {
		cfg.KeyPrefix = store.TestKeyPrefix
	}
	return store.NewRedisStore(cfg)
}
