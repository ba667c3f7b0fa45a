// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpqformat

import (
	"encoding/binary"
	"io"
)

func readUint32s(r io.Reader, data []uint32) error {
	return binary.Read(r, binary.LittleEndian, data)
}

func readUint16s(r io.Reader, data []uint16) error {
	return binary.Read(r, binary.LittleEndian, data)
}

func writeUint32s(w io.Writer, data []uint32) error {
	return binary.Write(w, binary.LittleEndian, data)
}

func writeUint16s(w io.Writer, data []uint16) error {
	return binary.Write(w, binary.LittleEndian, data)
}
