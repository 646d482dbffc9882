package main

import (
	"github.com/Wa4h1h/go-xftp/pkg/client"
	"github.com/Wa4h1h/go-xftp/pkg/utils"
)

var (
	logLevel = utils.GetEnv[string]("XFTP_LOG_LEVEL", "info", false)
	numTries = utils.GetEnv[uint]("XFTP_NUM_TRIES", "3", false)
)

func main() {
	l := utils.NewLogger(logLevel).Sugar()
	c := client.NewClient(l, numTries)

	defer func(c client.Connector) {
		if err := c.Close(); err != nil {
			l.Error(err.Error())
		}
	}(c)

	cli := client.NewCli(l, c)
	cli.Read()
}
