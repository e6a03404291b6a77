package cmn

import (
	"fmt"
	"io"
	"os"
)

/*
	helpers for human readable output.
	every helper has a raw variant (no escape sequences)
	selected with the -r flag.
*/

// Stdout and Stderr are swapped in tests.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

const MediumMark string = "✓"

const MediumX string = "✕"

const MediumBulletPoint string = "•"

/*
	works the same as fmt.Fprintf but wraps output in seq
	and adds LF before finishing escape sequence
*/
func FPrintflnTrailing(w io.Writer, seq AnsiFlag, format string, args ...interface{}) {
	fmt.Fprintf(w, "%v%s\n%v", seq, fmt.Sprintf(format, args...), AttrOff)
}

func PrintflnSuccess(prefix, _fmt string, argv ...interface{}) {
	fmt.Fprintf(Stderr, "%s%v%s %s%v\n",
		prefix, ForeGreen, MediumMark, fmt.Sprintf(_fmt, argv...), AttrOff)
}

func PrintflnError(_fmt string, argv ...interface{}) {
	FPrintflnTrailing(Stderr, ForeRed, _fmt, argv...)
}

func PrintError(err error) {
	PrintflnError("%s", err)
}

func PrintflnWarn(prefix, _fmt string, argv ...interface{}) {
	fmt.Fprintf(Stderr, "%s%v%s %s%v\n",
		prefix, ForeYellow, MediumX, fmt.Sprintf(_fmt, argv...), AttrOff)
}

func PrintflnNotify(prefix, _fmt string, argv ...interface{}) {
	fmt.Fprintf(Stdout, "%s%v%s%v %s\n",
		prefix, ForeBlue, MediumBulletPoint, AttrOff, fmt.Sprintf(_fmt, argv...))
}

/*
	conditional formatting.
	if fmtdisable == false then formatting provided function fptr will be used
	else raw call is equivalent to calling fmt.printf with additional LF at the end
*/
func CndPrintfln(
	fmtdisable bool,
	fptr func(string, string, ...interface{}),
	prefix, _fmt string, argv ...interface{}) {

	if fmtdisable {
		fmt.Fprintf(Stdout, "%s\n", fmt.Sprintf(_fmt, argv...))
	} else {
		fptr(prefix, _fmt, argv...)
	}
}

func CndPrintln(
	fmtdisable bool,
	fptr func(string, string, ...interface{}),
	prefix,
	text string) {

	if fmtdisable {
		fmt.Fprintf(Stdout, "%s\n", text)
	} else {
		fptr(prefix, "%s", text)
	}
}

func CndPrintError(fmtdisable bool, err error) {
	if fmtdisable {
		fmt.Fprintf(Stderr, "%s\n", err)
	} else {
		PrintError(err)
	}
}
