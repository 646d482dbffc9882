package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Wa4h1h/go-xftp/pkg/server"
	"github.com/Wa4h1h/go-xftp/pkg/storage"
	"github.com/Wa4h1h/go-xftp/pkg/types"
	"github.com/Wa4h1h/go-xftp/pkg/utils"
)

var (
	xftpPort     = utils.GetEnv[string]("XFTP_PORT", types.DefaultControlPort, false)
	logLevel     = utils.GetEnv[string]("XFTP_LOG_LEVEL", "debug", false)
	readTimeout  = utils.GetEnv[uint]("XFTP_READ_TIMEOUT", "3", false)
	writeTimeout = utils.GetEnv[uint]("XFTP_WRITE_TIMEOUT", "3", false)
	numTries     = utils.GetEnv[uint]("XFTP_NUM_TRIES", "3", false)
	trace        = utils.GetEnv[bool]("XFTP_TRACE", "false", false)
	xftpBaseDir  = utils.GetEnv[string]("XFTP_BASE_DIR", utils.UserHomeDirPath(), false)
)

func main() {
	l := utils.NewLogger(logLevel).Sugar()
	store := storage.NewDir(l, xftpBaseDir)
	s := server.NewServer(l, xftpPort, store, readTimeout, writeTimeout, int(numTries), trace)

	go func() {
		if err := s.ListenAndServe(); err != nil {
			l.Error(err.Error())
		}
	}()

	l.Info(fmt.Sprintf("listening on port %s, serving %s", xftpPort, xftpBaseDir))

	defer func() {
		if err := s.Close(); err != nil {
			panic(err)
		}

		l.Info(fmt.Sprintf("closed connection on port %s", xftpPort))
	}()

	// listen shutdown signal
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-signalChan
}
