package commands

import (
	"errors"
	"fmt"

	"github.com/tidwall/redcon"

	"lsmkv"
	"lsmkv/constants"
)

const InvalidArgumentsErrorMsg = "ERR wrong number of arguments for '%s' command"

type CommandFunc func(conn redcon.Conn, args [][]byte, db *lsmkv.Engine)

var CommandMap = map[string]CommandFunc{
	"ping":   Ping,
	"quit":   Quit,
	"set":    Set,
	"get":    Get,
	"del":    Delete,
	"keys":   Keys,
	"exists": Exists,
}

var Ping CommandFunc = func(conn redcon.Conn, args [][]byte, db *lsmkv.Engine) {
	conn.WriteString("PONG")
}

var Quit CommandFunc = func(conn redcon.Conn, args [][]byte, db *lsmkv.Engine) {
	conn.WriteString("OK")
	conn.Close()
}

var Set CommandFunc = func(conn redcon.Conn, args [][]byte, db *lsmkv.Engine) {
	if len(args) != 3 {
		conn.WriteError(fmt.Sprintf(InvalidArgumentsErrorMsg, string(args[0])))
		return
	}
	if err := db.Put(string(args[1]), args[2]); err != nil {
		conn.WriteError(err.Error())
		return
	}
	conn.WriteString("OK")
}

var Get CommandFunc = func(conn redcon.Conn, args [][]byte, db *lsmkv.Engine) {
	if len(args) != 2 {
		conn.WriteError(fmt.Sprintf(InvalidArgumentsErrorMsg, string(args[0])))
		return
	}
	val, err := db.Get(string(args[1]))
	if err != nil {
		conn.WriteNull()
		return
	}
	conn.WriteBulk(val)
}

var Delete CommandFunc = func(conn redcon.Conn, args [][]byte, db *lsmkv.Engine) {
	if len(args) != 2 {
		conn.WriteError(fmt.Sprintf(InvalidArgumentsErrorMsg, string(args[0])))
		return
	}
	if err := db.Delete(string(args[1])); err != nil {
		conn.WriteInt(0)
		return
	}
	conn.WriteInt(1)
}

var Exists CommandFunc = func(conn redcon.Conn, args [][]byte, db *lsmkv.Engine) {
	if len(args) != 2 {
		conn.WriteError(fmt.Sprintf(InvalidArgumentsErrorMsg, string(args[0])))
		return
	}
	_, err := db.Get(string(args[1]))
	if errors.Is(err, constants.ErrKeyNotFound) {
		conn.WriteInt(0)
		return
	}
	conn.WriteInt(1)
}

// Keys takes a regexp pattern, matching the engine's own Keys surface;
// "*" is mapped to the empty pattern, which lists every key.
var Keys CommandFunc = func(conn redcon.Conn, args [][]byte, db *lsmkv.Engine) {
	if len(args) != 2 {
		conn.WriteError(fmt.Sprintf(InvalidArgumentsErrorMsg, string(args[0])))
		return
	}
	pattern := string(args[1])
	if pattern == "*" {
		pattern = ""
	}
	keys, err := db.Keys(pattern)
	if err != nil {
		conn.WriteError(err.Error())
		return
	}
	writeRedisArray(conn, keys)
}

func writeRedisArray(conn redcon.Conn, strs []string) {
	conn.WriteArray(len(strs))
	for _, s := range strs {
		conn.WriteBulkString(s)
	}
}
