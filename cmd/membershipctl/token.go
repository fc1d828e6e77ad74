package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fithub/membership-service/internal/api/middlewarectx"
	"github.com/fithub/membership-service/internal/lib/jwt"
)

var (
	tokenUserID int64
	tokenRole   string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a signed access token for local testing",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenUserID <= 0 {
			return errors.New("--user must be positive")
		}
		role := strings.ToUpper(tokenRole)
		switch role {
		case middlewarectx.RoleAdmin, middlewarectx.RoleTrainer, middlewarectx.RoleMember:
		default:
			return fmt.Errorf("unknown role %q", tokenRole)
		}

		token, err := jwt.NewJWTMaker(cfg.JWT.SecretKey, cfg.JWT.TokenTTL).GenerateToken(tokenUserID, role)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Int64Var(&tokenUserID, "user", 0, "user id")
	tokenCmd.Flags().StringVar(&tokenRole, "role", middlewarectx.RoleMember, "ROLE_ADMIN, ROLE_TRAINER or ROLE_MEMBER")
}
