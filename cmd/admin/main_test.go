package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"academic-portal/core"
)

type stubUsers struct {
	core.UserRepository
	saved map[string]string
}

func (s *stubUsers) Upsert(_ context.Context, login, digest string) (int64, error) {
	s.saved[login] = digest
	return int64(len(s.saved)), nil
}

func newTestCLI(password string) (*commandLine, *stubUsers, *bytes.Buffer) {
	readPasswordFunc = func(int) ([]byte, error) { return []byte(password), nil }
	users := &stubUsers{saved: map[string]string{}}
	out := &bytes.Buffer{}
	cli := &commandLine{
		cfg: core.Config{PasswordScheme: core.SchemeMD5},
		out: out,
		users: func(context.Context) (core.UserRepository, func(), error) {
			return users, func() {}, nil
		},
		migrate: func(context.Context) error { return nil },
	}
	return cli, users, out
}

func runCLI(cli *commandLine, args ...string) error {
	cmd := newRootCmd(cli)
	cmd.SetArgs(args)
	cmd.SetErr(&bytes.Buffer{})
	return cmd.ExecuteContext(context.Background())
}

func TestAddUser(t *testing.T) {
	cli, users, out := newTestCLI("secret")

	if err := runCLI(cli, "adduser", "secretaria"); err != nil {
		t.Fatalf("adduser error: %v", err)
	}
	if got := users.saved["secretaria"]; got != "5ebe2294ecd0e0f08eab7690d2a6ee69" {
		t.Fatalf("unexpected digest %q", got)
	}
	if !strings.Contains(out.String(), `user "secretaria" saved`) {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestAddUserRejectsEmptyPassword(t *testing.T) {
	cli, users, _ := newTestCLI("")

	if err := runCLI(cli, "adduser", "secretaria"); err == nil {
		t.Fatalf("expected error for empty password")
	}
	if len(users.saved) != 0 {
		t.Fatalf("user saved despite empty password")
	}
}

func TestDigest(t *testing.T) {
	cli, _, out := newTestCLI("secret")

	if err := runCLI(cli, "digest"); err != nil {
		t.Fatalf("digest error: %v", err)
	}
	if !strings.Contains(out.String(), "5ebe2294ecd0e0f08eab7690d2a6ee69") {
		t.Fatalf("digest missing from output %q", out.String())
	}
}

func TestMigrateReportsFailure(t *testing.T) {
	cli, _, _ := newTestCLI("secret")
	cli.migrate = func(context.Context) error { return errors.New("connection refused") }

	if err := runCLI(cli, "migrate"); err == nil {
		t.Fatalf("expected migrate error")
	}
}
