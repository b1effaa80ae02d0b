package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/riscvlint/rva/cmd"
)

func main() {
	app := cli.NewApp()
	app.Name = "rva"
	app.Usage = "RISC-V RV32I register and calling-convention linter"
	app.Description = "rva statically checks RV32I assembly for register-saving, liveness, and calling-convention violations"
	app.Commands = []*cli.Command{
		cmd.LintCommand,
	}
	err := app.RunContext(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
