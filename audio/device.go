package audio

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// SelectDevice lets the user pick the memo microphone. A single input is
// returned without prompting; otherwise the terminal goes raw and the list
// is navigated with arrows or j/k.
func SelectDevice(sys System) (*Device, error) {
	devices, err := sys.Inputs()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("no microphone found")
	}
	if len(devices) == 1 {
		return &devices[0], nil
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	cursor := 0
	renderPicker(devices, cursor)

	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}

		switch key := pickerKey(buf[:n]); key {
		case keySelect:
			fmt.Print("\r\n")
			term.Restore(fd, oldState)
			return &devices[cursor], nil
		case keyAbort:
			fmt.Print("\r\n")
			term.Restore(fd, oldState)
			os.Exit(130)
		case keyUp:
			if cursor > 0 {
				cursor--
			}
		case keyDown:
			if cursor < len(devices)-1 {
				cursor++
			}
		}

		fmt.Printf("\x1b[%dA", len(devices)+2)
		renderPicker(devices, cursor)
	}
}

func renderPicker(devices []Device, cursor int) {
	fmt.Print("\r\x1b[J")
	fmt.Print("Pick a microphone for your memos (↑/↓, Enter to confirm):\r\n\r\n")
	for i, d := range devices {
		tag := ""
		if IsBluetooth(d.Name) {
			tag = " \x1b[33m[bluetooth: reduced quality]\x1b[0m"
		}
		if i == cursor {
			fmt.Printf("  \x1b[1;36m▶ %s%s\x1b[0m\r\n", d.Name, tag)
		} else {
			fmt.Printf("    %s%s\r\n", d.Name, tag)
		}
	}
}

type key int

const (
	keyNone key = iota
	keyUp
	keyDown
	keySelect
	keyAbort
)

func pickerKey(buf []byte) key {
	if len(buf) == 1 {
		switch buf[0] {
		case '\r':
			return keySelect
		case 3: // Ctrl+C
			return keyAbort
		case 'k':
			return keyUp
		case 'j':
			return keyDown
		}
	}
	if len(buf) == 3 && buf[0] == 0x1b && buf[1] == '[' {
		switch buf[2] {
		case 'A':
			return keyUp
		case 'B':
			return keyDown
		}
	}
	return keyNone
}
