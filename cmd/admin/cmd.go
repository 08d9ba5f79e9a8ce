package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/noah-isme/digital-diary-api/internal/dto"
	"github.com/noah-isme/digital-diary-api/internal/models"
	"github.com/noah-isme/digital-diary-api/internal/service"
)

var (
	readPasswordFunc = term.ReadPassword

	errHelp = errors.New("help provided")
)

type userCreator interface {
	CreateUser(ctx context.Context, in service.NewUserInput) (*models.User, error)
}

type journalSeeder interface {
	Run(ctx context.Context) (*dto.SeedSummary, error)
}

type commandLine struct {
	users   userCreator
	seeder  journalSeeder
	migrate func(command string, args ...string) error
	out     io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate [up|down|status]                  - apply, roll back or list schema migrations")
	fmt.Fprintln(cli.out, "  adduser -email EMAIL -name NAME [-role R] - create an account, the password is prompted next")
	fmt.Fprintln(cli.out, "  seed                                      - replace the journal with random demo data")
}

// run dispatches args, where args[0] is the program name.
func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		command := "up"
		if len(args) > 2 {
			command = args[2]
		}
		switch command {
		case "up", "down", "status":
		default:
			cli.printUsage()
			return errHelp
		}
		if err := cli.migrate(command); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "migrate %s: done\n", command)
		return nil

	case "adduser":
		addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
		addUserCmd.SetOutput(cli.out)
		email := addUserCmd.String("email", "", "The user's email, used to log in.")
		name := addUserCmd.String("name", "", "The user's full name.")
		role := addUserCmd.String("role", string(models.RoleTeacher), "TEACHER or ADMIN.")
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *email == "" || *name == "" {
			addUserCmd.Usage()
			return errHelp
		}

		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addUserCmd.Usage()
			return errHelp
		}

		user, err := cli.users.CreateUser(ctx, service.NewUserInput{
			Email:    *email,
			FullName: *name,
			Password: string(pwd),
			Role:     models.UserRole(*role),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "created %s %s (%s)\n", user.Role, user.Email, user.ID)
		return nil

	case "seed":
		summary, err := cli.seeder.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "seeded %d students, %d grades, %d attendance marks\n",
			summary.Students, summary.Grades, summary.Attendance)
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}
