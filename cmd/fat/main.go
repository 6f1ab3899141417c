package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"fat-go/internal/app"
	"fat-go/internal/config"
	"fat-go/internal/encryption"
	"fat-go/internal/fat"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a FatApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "CreateFile", "Grant").
func newApp(operation string) (*app.FatApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewFatApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// withApp runs fn against a freshly opened app and closes it afterwards.
func withApp(operation string, fn func(a *app.FatApp) error) error {
	a, err := newApp(operation)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// contentArg returns the --content flag when set, otherwise all of stdin.
func contentArg(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("content") {
		return cmd.Flags().GetString("content")
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading content from stdin: %w", err)
	}
	return string(data), nil
}

func printEntries(w io.Writer, entries []fat.FileEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No files.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tOWNER\tSIZE\tMODIFIED\tSTATE")
	for _, e := range entries {
		state := "active"
		if e.Trashed {
			state = "trashed " + e.DeletedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", e.Name, e.Owner, e.Size, e.ModifiedAt.Local().Format(time.DateTime), state)
	}
	tw.Flush()
}

var rootCmd = &cobra.Command{
	Use:          "fat",
	Short:        "Multi-user file store on chained data blocks",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if encrypt {
			cfg.Encryption.Type = "age"
		}

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		if encrypt {
			pass, err := app.ReadSecret("New passphrase: ")
			if err != nil {
				return err
			}
			if err := encryption.NewAgeEncryptor(cfg.Encryption).Setup(pass); err != nil {
				return fmt.Errorf("failed to set up encryption keys: %w", err)
			}
			fmt.Printf("Encryption keys written to %s\n", cfg.Encryption.PublicKeyPath)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		fmt.Printf("Store:    %s\n", cfg.Store.Type)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:        %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:         %s\n", cfg.LogDir)
		fmt.Printf("Store:           %s\n", cfg.Store.Type)
		fmt.Printf("Encryption:      %s\n", cfg.Encryption.Type)
		fmt.Printf("Chunk Size:      %d\n", cfg.Catalog.ChunkSize)
		fmt.Printf("Admin Can Trash: %v\n", cfg.Catalog.AdminCanTrash)
		return nil
	},
}

// session commands
var loginCmd = &cobra.Command{
	Use:   "login USER",
	Short: "Log in as USER",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := app.ReadSecret("Password: ")
		if err != nil {
			return err
		}
		return withApp("Login", func(a *app.FatApp) error {
			if err := a.Login(args[0], password); err != nil {
				return err
			}
			fmt.Printf("Logged in as %s\n", args[0])
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("Logout", func(a *app.FatApp) error { return a.Logout() })
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("WhoAmI", func(a *app.FatApp) error {
			user, admin, err := a.WhoAmI()
			if err != nil {
				return err
			}
			role := fat.RoleUser
			if admin {
				role = fat.RoleAdmin
			}
			fmt.Printf("%s (%s)\n", user, role)
			return nil
		})
	},
}

// user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add USER",
	Short: "Create an account (admins only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		admin, _ := cmd.Flags().GetBool("admin")
		password, err := app.ReadSecret("Password for " + args[0] + ": ")
		if err != nil {
			return err
		}
		return withApp("CreateUser", func(a *app.FatApp) error {
			if err := a.CreateUser(args[0], password, admin); err != nil {
				return err
			}
			fmt.Printf("Created user %s\n", args[0])
			return nil
		})
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("ListUsers", func(a *app.FatApp) error {
			users, err := a.ListUsers()
			if err != nil {
				return err
			}
			for _, u := range users {
				fmt.Printf("%s\t%s\n", u.Username, u.Role)
			}
			return nil
		})
	},
}

// file commands
var createCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a file from --content or stdin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := contentArg(cmd)
		if err != nil {
			return err
		}
		return withApp("CreateFile", func(a *app.FatApp) error {
			entry, err := a.CreateFile(args[0], content)
			if err != nil {
				return err
			}
			fmt.Printf("Created %s (%d characters)\n", entry.Name, entry.Size)
			return nil
		})
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List files",
	RunE: func(cmd *cobra.Command, args []string) error {
		trash, _ := cmd.Flags().GetBool("trash")
		all, _ := cmd.Flags().GetBool("all")
		return withApp("ListFiles", func(a *app.FatApp) error {
			var (
				entries []fat.FileEntry
				err     error
			)
			if trash {
				entries, err = a.ListTrash()
			} else {
				entries, err = a.ListFiles(all)
			}
			if err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		})
	},
}

var catCmd = &cobra.Command{
	Use:   "cat NAME",
	Short: "Print a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("ReadFile", func(a *app.FatApp) error {
			content, err := a.ReadFile(args[0])
			if content != "" {
				fmt.Fprint(cmd.OutOrStdout(), content)
			}
			if errors.Is(err, fat.ErrCorruption) {
				fmt.Fprintln(os.Stderr)
				return fmt.Errorf("output is incomplete: %w", err)
			}
			return err
		})
	},
}

var statCmd = &cobra.Command{
	Use:   "stat NAME",
	Short: "Show file metadata and its block chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		blocks, _ := cmd.Flags().GetBool("blocks")
		return withApp("StatFile", func(a *app.FatApp) error {
			e, err := a.StatFile(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Name:     %s\n", e.Name)
			fmt.Printf("Owner:    %s\n", e.Owner)
			fmt.Printf("Size:     %d\n", e.Size)
			fmt.Printf("Created:  %s\n", e.CreatedAt.Local().Format(time.DateTime))
			fmt.Printf("Modified: %s\n", e.ModifiedAt.Local().Format(time.DateTime))
			fmt.Printf("Readers:  %s\n", strings.Join(e.Readers, ", "))
			fmt.Printf("Writers:  %s\n", strings.Join(e.Writers, ", "))
			fmt.Printf("First:    %s\n", e.FirstBlockKey)
			if !blocks {
				return nil
			}

			links, err := a.Chain(args[0])
			for i, l := range links {
				fmt.Printf("  %3d  %-32s %q\n", i, l.Key, l.Block.Payload)
			}
			return err
		})
	},
}

var editCmd = &cobra.Command{
	Use:   "edit NAME",
	Short: "Replace the content of a file from --content or stdin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := contentArg(cmd)
		if err != nil {
			return err
		}
		return withApp("UpdateFile", func(a *app.FatApp) error {
			return a.UpdateFile(args[0], content)
		})
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm NAME",
	Short: "Move a file to the recycle bin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("TrashFile", func(a *app.FatApp) error { return a.TrashFile(args[0]) })
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore NAME",
	Short: "Restore a file from the recycle bin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("RestoreFile", func(a *app.FatApp) error { return a.RestoreFile(args[0]) })
	},
}

// perm command
var permCmd = &cobra.Command{
	Use:   "perm",
	Short: "Manage file permissions (admins only)",
}

var permGrantCmd = &cobra.Command{
	Use:   "grant NAME USER read|write",
	Short: "Grant USER a capability on NAME",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("Grant", func(a *app.FatApp) error { return a.Grant(args[0], args[1], args[2]) })
	},
}

var permRevokeCmd = &cobra.Command{
	Use:   "revoke NAME USER read|write",
	Short: "Revoke a capability on NAME from USER",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("Revoke", func(a *app.FatApp) error { return a.Revoke(args[0], args[1], args[2]) })
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configInitCmd.Flags().Bool("encrypt", false, "Encrypt records with a new age key pair")

	// user subcommands
	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
	userAddCmd.Flags().Bool("admin", false, "Give the account the admin role")

	// perm subcommands
	permCmd.AddCommand(permGrantCmd)
	permCmd.AddCommand(permRevokeCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringP("content", "c", "", "File content (default: read stdin)")
	rootCmd.AddCommand(lsCmd)
	lsCmd.Flags().Bool("trash", false, "List only the recycle bin")
	lsCmd.Flags().BoolP("all", "a", false, "Include trashed files")
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(statCmd)
	statCmd.Flags().BoolP("blocks", "b", false, "Also print the block chain")
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringP("content", "c", "", "New content (default: read stdin)")
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(permCmd)
}
