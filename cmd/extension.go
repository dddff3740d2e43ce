package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// Environment passed to extensions. Except ATR_OFFLINE, these are the
// variables read by config.Load, so an extension sees the same settings.
const (
	EnvStoreDriver     = "ATR_STORE_DRIVER"
	EnvStorePath       = "ATR_STORE_PATH"
	EnvStoreDSN        = "ATR_STORE_DSN"
	EnvDisplayCurrency = "ATR_DISPLAY_CURRENCY"
	EnvLogLevel        = "ATR_LOG_LEVEL"
	EnvOffline         = "ATR_OFFLINE"
)

// RunExtension attempts to find and execute an external atr-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found or executed.
func RunExtension(subcommand string, args []string) (bool, int) {
	externalCmdName := "atr-" + subcommand

	// Look for the external command in PATH
	lp, err := exec.LookPath(externalCmdName)
	if err != nil {
		return false, 0
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return true, 1
	}

	// Found external command, execute it
	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// Pass resolved settings as environment variables
	cmd.Env = os.Environ() // Start with existing environment variables
	cmd.Env = append(cmd.Env, EnvStoreDriver+"="+cfg.Store.Driver)
	cmd.Env = append(cmd.Env, EnvStorePath+"="+cfg.Store.Path)
	cmd.Env = append(cmd.Env, EnvStoreDSN+"="+cfg.Store.DSN)
	cmd.Env = append(cmd.Env, EnvDisplayCurrency+"="+cfg.DisplayCurrency)
	cmd.Env = append(cmd.Env, EnvLogLevel+"="+cfg.LogLevel)
	cmd.Env = append(cmd.Env, EnvOffline+"="+strconv.FormatBool(*offline))

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		// If it's not an ExitError, report a generic error
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", externalCmdName, err)

		return true, 1 // Indicate that an attempt was made, but it failed
	}

	return true, 0 // External command executed successfully with exit code 0
}
