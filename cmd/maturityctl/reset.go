package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"maturity-assessment-backend/internal/config"
	"maturity-assessment-backend/internal/db"
	"maturity-assessment-backend/internal/repository"
	"maturity-assessment-backend/internal/service"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to the server XML configuration",
		Value: "config.xml",
	}

	accessCodeFlag = &cli.StringFlag{
		Name:     "access-code",
		Usage:    "Access code of the organization",
		Required: true,
	}

	resetPasswordCmd = &cli.Command{
		Name:   "reset-password",
		Usage:  "Sets a new password for an organization",
		Flags:  []cli.Flag{configFlag, accessCodeFlag},
		Action: cmdResetPassword,
	}
)

func cmdResetPassword(ctx context.Context, cmd *cli.Command) error {
	password, err := readPassword(os.Stdin, os.Stderr)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(cmd.String(configFlag.Name))
	if err != nil {
		return err
	}
	gdb, err := db.Open(cfg.DB.DSN(), cfg.DB.Pool)
	if err != nil {
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}

	auth := service.NewAuthService(repository.NewOrganizationRepository(gdb), nil)
	org, err := auth.ResetPasswordByAccessCode(ctx, cmd.String(accessCodeFlag.Name), password)
	if err != nil {
		return err
	}
	fmt.Fprintf(writer(cmd), "password reset for %s (%s)\n", org.Name, org.AccessCode)
	return nil
}

// readPassword prompts twice without echo on a terminal. Piped input is
// read as a single line.
func readPassword(in *os.File, prompt io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return readPasswordLine(in)
	}

	fmt.Fprint(prompt, "New password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	fmt.Fprint(prompt, "Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

func readPasswordLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty password")
	}
	return line, nil
}
