// Command verifytoken checks a bearer token against the configured user pool
// and prints the identity it carries. It reads the same environment as the
// server. The token comes from the first argument or stdin.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/scavhunt/scavhunt/backend/internal/auth"
	"github.com/scavhunt/scavhunt/backend/internal/config"
	"github.com/scavhunt/scavhunt/backend/internal/oidc"
	"github.com/scavhunt/scavhunt/backend/pkg/logger"
)

func main() {
	timeout := flag.Duration("timeout", 15*time.Second, "overall verification timeout")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	defer logger.Sync()

	raw, err := readToken(flag.Arg(0))
	if err != nil {
		logger.Fatalf("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	verifier, err := oidc.NewVerifier(ctx, cfg.Cognito)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	user, err := verifier.VerifyToken(ctx, raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "token rejected (%s): %s\n", auth.Reason(err), auth.Describe(err))
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(user)
}

func readToken(arg string) (string, error) {
	if arg == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read token from stdin: %w", err)
		}
		arg = line
	}
	arg = strings.TrimSpace(arg)
	if t, err := auth.BearerToken(arg); err == nil {
		arg = t
	}
	if arg == "" {
		return "", errors.New("no token given")
	}
	return arg, nil
}
