package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/contactbook/internal/client/api"
	"github.com/iudanet/contactbook/internal/client/auth"
	"github.com/iudanet/contactbook/internal/client/iocli"
	pkgapi "github.com/iudanet/contactbook/pkg/api"
)

// ErrUnknownCommand команда не распознана
var ErrUnknownCommand = errors.New("unknown command")

// ContactsAPI методы сервера, которые использует CLI
type ContactsAPI interface {
	Signup(ctx context.Context, req pkgapi.SignupRequest) (*pkgapi.SignupResponse, error)
	RequestEmail(ctx context.Context, email string) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) (string, error)
	Me(ctx context.Context, token string) (*pkgapi.User, error)
	ListContacts(ctx context.Context, token string, skip, limit int) ([]pkgapi.Contact, error)
	Birthdays(ctx context.Context, token string, skip, limit int) ([]pkgapi.Contact, error)
	SearchContacts(ctx context.Context, token string, q api.SearchQuery) ([]pkgapi.Contact, error)
	GetContact(ctx context.Context, token string, id int64) (*pkgapi.Contact, error)
	CreateContact(ctx context.Context, token string, req pkgapi.ContactRequest) (*pkgapi.Contact, error)
	UpdateContact(ctx context.Context, token string, id int64, req pkgapi.ContactRequest) (*pkgapi.Contact, error)
	DeleteContact(ctx context.Context, token string, id int64) error
}

type Cli struct {
	io          iocli.IO
	apiClient   ContactsAPI
	authService auth.Service
}

func New(io iocli.IO, apiClient ContactsAPI, authService auth.Service) *Cli {
	return &Cli{
		io:          io,
		apiClient:   apiClient,
		authService: authService,
	}
}

// Run выполняет команду с аргументами
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "signup", "register":
		return c.runSignup(ctx)
	case "request-email":
		return c.runRequestEmail(ctx, args)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "me":
		return c.runMe(ctx)
	case "list":
		return c.runList(ctx, args)
	case "get":
		return c.runGet(ctx, args)
	case "add":
		return c.runAdd(ctx)
	case "edit":
		return c.runEdit(ctx, args)
	case "delete":
		return c.runDelete(ctx, args)
	case "search":
		return c.runSearch(ctx, args)
	case "birthdays":
		return c.runBirthdays(ctx, args)
	case "forgot-password":
		return c.runForgotPassword(ctx, args)
	case "reset-password":
		return c.runResetPassword(ctx, args)
	case "help":
		c.PrintUsage()
		return nil
	default:
		c.PrintUsage()
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
}

// withToken выполняет запрос с access token текущей сессии
func (c *Cli) withToken(ctx context.Context, fn func(token string) error) error {
	return c.authService.WithToken(ctx, fn)
}

func (c *Cli) PrintUsage() {
	c.io.Println("Contacts Client")
	c.io.Println()
	c.io.Println("Usage:")
	c.io.Println("  contacts [OPTIONS] COMMAND [ARGS]")
	c.io.Println()
	c.io.Println("Options:")
	c.io.Println("  -version                     Show version information")
	c.io.Println("  -server URL                  Server URL (default: http://localhost:8000)")
	c.io.Println("  -db PATH                     Path to local session database (default: contacts-client.db)")
	c.io.Println()
	c.io.Println("Account:")
	c.io.Println("  signup                       Create an account")
	c.io.Println("  request-email EMAIL          Resend the confirmation email")
	c.io.Println("  login                        Login and save the session")
	c.io.Println("  logout                       Delete the local session")
	c.io.Println("  status                       Show session status")
	c.io.Println("  me                           Show your profile")
	c.io.Println("  forgot-password EMAIL        Request a password reset email")
	c.io.Println("  reset-password TOKEN         Set a new password using the emailed token")
	c.io.Println()
	c.io.Println("Contacts:")
	c.io.Println("  list [-skip N] [-limit N]    List contacts")
	c.io.Println("  get <id>                     Show contact details")
	c.io.Println("  add                          Add a contact")
	c.io.Println("  edit <id>                    Edit a contact")
	c.io.Println("  delete [-y] <id>             Delete a contact")
	c.io.Println("  search -first|-last|-email V Find a contact")
	c.io.Println("  birthdays                    Birthdays in the next 7 days")
	c.io.Println()
	c.io.Println("Examples:")
	c.io.Println("  contacts signup")
	c.io.Println("  contacts login")
	c.io.Println("  contacts list -limit 20")
	c.io.Println("  contacts search -email ivan@example.com")
	c.io.Println("  contacts -server https://contacts.example.com birthdays")
}
