package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ready-set-deploy/rsd/internal/rsderrors"
)

func main() {
	reg := StaticRegistry()
	root := RootCommand(reg)

	err := root.ExecuteContext(context.Background())
	if err != nil {
		logrus.Error(err)
	}
	os.Exit(rsderrors.ExitCode(err))
}
