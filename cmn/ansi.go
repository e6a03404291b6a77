package cmn

import "fmt"

/*
	terminal escape sequences used by the printing helpers.

	fmt.Printf("%vHello World%v\n", cmn.ForeRed, cmn.AttrOff)
*/

type AnsiFlag int

const (
	AttrOff  AnsiFlag = 0
	AttrBold AnsiFlag = 1
)

const (
	ForeRed AnsiFlag = iota + 31
	ForeGreen
	ForeYellow
	ForeBlue
	ForeMagenta
	ForeCyan
)

func (f AnsiFlag) String() string {
	return fmt.Sprintf("\x1b[%dm", int(f))
}
