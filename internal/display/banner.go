package display

import (
	"fmt"
	"io"

	"github.com/backmassage/silk2mp3/internal/term"
)

const banner = `     _ _ _    ____
 ___(_) | | _|___ \ _ __ ___  _ __  __ _
/ __| | | |/ / __) | '_ ` + "`" + ` _ \| '_ \|__ /
\__ \ | |   < / __/| | | | | | |_) ||_ \
|___/_|_|_|\_\_____|_| |_| |_| .__/___/
                             |_|`

// PrintBanner writes the ASCII art banner to w, magenta when colors are on.
func PrintBanner(w io.Writer) {
	fmt.Fprintln(w, term.Magenta.Render(banner))
}
