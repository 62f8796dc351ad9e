package console

import (
	"fmt"
	"io"
	"os"

	"github.com/mklimuk/magsensor/magnetic"
)

const PictoMagnet = "🧲"
const PictoCompass = "🧭"
const PictoThermometer = "🌡"
const PictoStop = "🚫"
const PictoGhost = "👻"
const PictoPin = "📌"

var writer io.Writer
var errWriter io.Writer

func init() {
	writer = os.Stdout
	errWriter = os.Stderr
}

func SetOutput(w, errw io.Writer) {
	writer = w
	errWriter = errw
}

func Errorf(msg string, args ...interface{}) {
	_, _ = fmt.Fprintf(errWriter, "%s: %s\n", Red("ERROR"), fmt.Sprintf(msg, args...))
}

func Warnf(msg string, args ...interface{}) {
	_, _ = fmt.Fprintf(errWriter, "%s: %s\n", Yellow("WARN"), fmt.Sprintf(msg, args...))
}

func Infof(msg string, args ...interface{}) {
	_, _ = fmt.Fprintf(writer, "%s %s\n", White("..."), fmt.Sprintf(msg, args...))
}

func Print(msg string) {
	_, _ = fmt.Fprintln(writer, msg)
}

func Printf(msg string, args ...interface{}) {
	_, _ = fmt.Fprintf(writer, msg, args...)
}

// Word renders a register value, absent values in yellow.
func Word(w magnetic.Word) string {
	if !w.Valid {
		return Yellow(w.String())
	}
	return White(w.String())
}

func PrintReading(res magnetic.Reading) {
	Printf("%s x=%s y=%s z=%s\n", PictoMagnet, Word(res.X), Word(res.Y), Word(res.Z))
	Printf("%s %s\n", PictoThermometer, Word(res.Temperature))
	b, ok := magnetic.Bearing(res.X, res.Y)
	PrintBearing(b, ok)
}

func PrintBearing(b float64, ok bool) {
	if !ok {
		Printf("%s %s\n", PictoGhost, Yellow("no data"))
		return
	}
	Printf("%s %s°\n", PictoCompass, White(fmt.Sprintf("%.1f", b)))
}
