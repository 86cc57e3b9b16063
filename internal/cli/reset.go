package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/kombucha-eln/internal/security"
	"github.com/terraincognita07/kombucha-eln/internal/services"
)

const minTemporaryPasswordLength = 8

func newResetPasswordCommand(ctx *commandContext) *cobra.Command {
	var prompt bool

	cmd := &cobra.Command{
		Use:   "reset-password <username>",
		Short: "Reset a user's password",
		Long:  "Reset a user's password. A temporary password is generated and printed unless --prompt is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}

			password := ""
			if prompt {
				password, err = promptNewPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}

			auth := services.NewAuthService(store.Users)
			issued, err := resetPassword(cmd.Context(), auth, args[0], password)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Password for %s was reset.\n", args[0])
			if !prompt {
				fmt.Fprintf(out, "Temporary password: %s\n", issued)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&prompt, "prompt", false, "Read the new password from the terminal instead of generating one")
	return cmd
}

// resetPassword stores password, or a generated one when password is empty,
// and returns the password that was set.
func resetPassword(ctx context.Context, auth *services.AuthService, username string, password string) (string, error) {
	if password == "" {
		generated, err := generateTemporaryPassword(12)
		if err != nil {
			return "", fmt.Errorf("generate temporary password: %w", err)
		}
		password = generated
	}

	if err := auth.ResetPassword(ctx, username, password); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return "", fmt.Errorf("user %s not found", username)
		}
		return "", fmt.Errorf("reset password: %w", err)
	}
	return password, nil
}

func generateTemporaryPassword(length int) (string, error) {
	if length < minTemporaryPasswordLength {
		length = minTemporaryPasswordLength
	}
	password, err := security.TemporaryPassword(length)
	if err != nil {
		return "", err
	}
	if err := services.ValidatePasswordStrength(password); err != nil {
		return "", fmt.Errorf("generated password: %w", err)
	}
	return password, nil
}

func promptNewPassword(in io.Reader, out io.Writer) (string, error) {
	reader := newSecretReader(in)

	fmt.Fprint(out, "New password: ")
	first, err := reader.readLine()
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if err := services.ValidatePasswordStrength(first); err != nil {
		return "", err
	}

	fmt.Fprint(out, "Repeat password: ")
	second, err := reader.readLine()
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if first != second {
		return "", errors.New("passwords do not match")
	}
	return first, nil
}
