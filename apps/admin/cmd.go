package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/peterbourgon/ff/v3"
	"golang.org/x/term"

	"github.com/trezcool/alama/core/school"
	"github.com/trezcool/alama/core/user"
	"github.com/trezcool/alama/storage/database"
)

// flags may also be set from the environment, eg. ALAMA_ADMIN_USERNAME
const envVarPrefix = "ALAMA_ADMIN"

var (
	readPasswordFunc = term.ReadPassword       // mockable
	gooseRunFunc     = database.RunMigration // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db        *sql.DB
	usrSvc    *user.Service
	schoolSvc *school.Service
	out       io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]             - run a goose command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  addadmin -username USERNAME        - create an admin, or reset their password")
	fmt.Fprintln(cli.out, "  resetpassword -username USERNAME   - reset an admin's password")
	fmt.Fprintln(cli.out, "  resetpassword -teacher TEACHER_ID  - reset a teacher's password")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "addadmin":
		fs := cli.newFlagSet("addadmin")
		username := fs.String("username", "", "The admin's username. The password will be prompted next.")
		if err := ff.Parse(fs, args[2:], ff.WithEnvVarPrefix(envVarPrefix)); err != nil {
			return err
		}
		if *username == "" {
			fs.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(fs)
		if err != nil {
			return err
		}
		return cli.addAdmin(*username, pwd)

	case "resetpassword":
		fs := cli.newFlagSet("resetpassword")
		username := fs.String("username", "", "The admin's username. The password will be prompted next.")
		teacherID := fs.String("teacher", "", "The teacher's ID. The password will be prompted next.")
		if err := ff.Parse(fs, args[2:], ff.WithEnvVarPrefix(envVarPrefix)); err != nil {
			return err
		}
		if (*username == "") == (*teacherID == "") { // exactly one of them
			fs.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(fs)
		if err != nil {
			return err
		}
		if *teacherID != "" {
			return cli.schoolSvc.ResetPassword(context.Background(), *teacherID, pwd)
		}
		return cli.usrSvc.ResetPassword(context.Background(), *username, pwd)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword(fs *flag.FlagSet) (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		fs.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) addAdmin(username, pwd string) error {
	adm, err := cli.usrSvc.AddOrUpdate(context.Background(), user.NewAdmin{Username: username, Password: pwd})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "admin %q saved\n", adm.Username)
	return nil
}
