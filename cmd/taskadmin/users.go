package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskhub/models"
	"taskhub/services"
)

var createUserFlags struct {
	username    string
	displayName string
	password    string
	role        string
}

// createUserCmd bootstraps accounts, typically the first administrator.
var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create an account without an acting administrator",
	Example: `  taskadmin create-user --username admin --password 's3cret-pass' --role ADMIN`,
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := models.ParseRole(createUserFlags.role)
		if err != nil {
			return err
		}
		db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)

		u, err := services.NewUserService(db).Bootstrap(cmd.Context(), services.NewUser{
			Username:    createUserFlags.username,
			DisplayName: createUserFlags.displayName,
			Password:    createUserFlags.password,
			Role:        role,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s, %s)\n", u.ID, u.Username, u.Role)
		return nil
	},
}

func init() {
	f := createUserCmd.Flags()
	f.StringVar(&createUserFlags.username, "username", "", "login name (required)")
	f.StringVar(&createUserFlags.displayName, "display-name", "", "display name, defaults to the username")
	f.StringVar(&createUserFlags.password, "password", "", "password, at least 8 characters (required)")
	f.StringVar(&createUserFlags.role, "role", "EMPLOYEE", "EMPLOYEE, MANAGER or ADMIN")
	_ = createUserCmd.MarkFlagRequired("username")
	_ = createUserCmd.MarkFlagRequired("password")
}
