package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/redcon"

	"lsmkv"
	"lsmkv/cmd/kvredis/commands"
	"lsmkv/config"
	"lsmkv/log"
)

var addr = ":6380"

func main() {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, "lsmkv")
	logDir := filepath.Join(homeDir, "lsmkvlogs")
	log.InitLogger(logDir)

	os.MkdirAll(dataDir, fs.ModePerm)
	db, err := lsmkv.Open(config.WithDirectory(dataDir))
	if err != nil {
		panic(fmt.Sprintf("cannot open lsmkv store, err: [%+v]", err))
	}

	err = redcon.ListenAndServe(addr,
		func(conn redcon.Conn, cmd redcon.Command) {
			if len(cmd.Args) == 0 {
				conn.WriteError(fmt.Sprintf("ERR no arguments for command: [%s]", string(cmd.Raw)))
				return
			}

			commandName := strings.ToLower(string(cmd.Args[0]))

			commandFunc, supported := commands.CommandMap[commandName]
			if !supported {
				conn.WriteError("ERR unknown command '" + commandName + "'")
				return
			}
			commandFunc(conn, cmd.Args, db)
		},
		func(conn redcon.Conn) bool {
			return true
		},
		func(conn redcon.Conn, err error) {
			log.Infof("closed: %s, err: %v", conn.RemoteAddr(), err)
		},
	)
	if err != nil {
		log.Fatalf("%v", err)
	}
}
