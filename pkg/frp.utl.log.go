/* Field Research Portal (FRP) is a component of the TerraLab Research Data Platform.
License:

	[PROPER LEGALESE HERE...]

	INTERIM LICENSE DESCRIPTION:
	In spirit, this license:
	1. Allows <Third Party> to use, modify, and / or distribute this software in perpetuity so long as <Third Party> understands:
		a. The software is provided as is without guarantee of additional support from TerraLab in any form.
		b. The software is provided as is without guarantee of exclusivity.

	2. Prohibits <Third Party> from taking any action which might interfere with TerraLab's right to use, modify and / or distribute this software in perpetuity.
*/

package pkg

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog" // go get github.com/rs/zerolog
)

var Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

/* LOG AND RETURN err SO CALL SITES CAN WRAP:  return LogErr(err) */
func LogErr(err error) error {
	pc, file, line, _ := runtime.Caller(1)
	name := runtime.FuncForPC(pc).Name()

	Logger.Error().
		Str("file", file).
		Str("func", name).
		Int("line", line).
		Msg(err.Error())

	return err
}

func LogChk(msg string) {
	pc, file, line, _ := runtime.Caller(1)
	name := runtime.FuncForPC(pc).Name()

	Logger.Info().
		Str("file", file).
		Str("func", name).
		Int("line", line).
		Msg(msg)
}

func TraceFunc(msg string) {
	pc, file, line, _ := runtime.Caller(1)
	name := runtime.FuncForPC(pc).Name()
	Logger.Debug().Msg(fmt.Sprintf("%s from %s -> %s : %d", msg, file, name, line))
}

/* DEVELOPMENT - DUMP ANY MODEL TO THE CONSOLE AS INDENTED JSON */
func Json(name string, v any) {
	js, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		LogErr(err)
	}
	fmt.Printf("\nJSON: %s:\n%s\n", name, string(js))
}
