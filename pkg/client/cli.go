package client

import (
	"bufio"
	"fmt"
	"os"

	"go.uber.org/zap"
)

type Cli struct {
	l          *zap.SugaredLogger
	xftpClient Connector
}

func NewCli(l *zap.SugaredLogger, xftpClient Connector) *Cli {
	return &Cli{l: l, xftpClient: xftpClient}
}

func (c *Cli) Read() {
	scanner := bufio.NewScanner(os.Stdin)
	evaluator := NewEvaluator(c.l, c.xftpClient)

	fmt.Print("xftp> ")

	for scanner.Scan() {
		evaluator.line = scanner.Text()

		done, err := evaluator.evaluate()
		if err != nil {
			fmt.Printf("%s\n", err.Error())
		}

		if done {
			break
		}

		fmt.Print("xftp> ")
	}

	if err := scanner.Err(); err != nil {
		panic(err)
	}
}
