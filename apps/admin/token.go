package main

import (
	"fmt"
	"time"

	echoapi "github.com/oinstituto/atlas/apps/api/echo"
)

// token prints an admin token for the /v1/admin routes.
func (cli *commandLine) token(subject string, ttl time.Duration) error {
	tok, err := echoapi.GenerateToken(echoapi.NewAdminClaims(cli.conf.AppName, subject, ttl), cli.conf.SecretKey)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cli.out, tok)
	return nil
}
