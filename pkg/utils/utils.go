package utils

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
)

func Fatal(v any) {
	fmt.Fprintf(os.Stderr, "bold:\n\t\033[0;1;31mfatal\033[0m: %v\n", v)
	if os.Getenv("BOLD_DEBUG") != "" {
		debug.PrintStack()
	}
	os.Exit(1)
}

func MustNo(err error) {
	if err != nil {
		Fatal(err.Error())
	}
}

func Assert(condition bool) {
	if !condition {
		Fatal("Assert Failed")
	}
}

// Read decodes a little-endian fixed-size record from the start of data.
func Read[T any](data []byte) (val T, err error) {
	reader := bytes.NewReader(data)
	err = binary.Read(reader, binary.LittleEndian, &val)
	return val, err
}

// ReadSlice decodes consecutive records of size sz.
func ReadSlice[T any](data []byte, sz int) ([]T, error) {
	nums := len(data) / sz
	res := make([]T, 0, nums)
	for nums > 0 {
		val, err := Read[T](data)
		if err != nil {
			return nil, err
		}
		res = append(res, val)
		data = data[sz:]
		nums--
	}
	return res, nil
}

// Write packs val little-endian into the start of buf.
func Write[T any](buf []byte, val T) {
	copy(buf, Append(nil, val))
}

// Append packs val little-endian at the end of buf.
func Append[T any](buf []byte, val T) []byte {
	b := &bytes.Buffer{}
	err := binary.Write(b, binary.LittleEndian, val)
	MustNo(err)
	return append(buf, b.Bytes()...)
}

func AlignTo(val, align uint64) uint64 {
	if align == 0 {
		return val
	}
	return (val + align - 1) / align * align
}

func RemoveIf[T any](elems []T, condition func(T) bool) []T {
	i := 0
	for _, elem := range elems {
		if condition(elem) {
			continue
		}
		elems[i] = elem
		i++
	}
	return elems[:i]
}

func RemovePrefix(s, prefix string) (string, bool) {
	if strings.HasPrefix(s, prefix) {
		s = strings.TrimPrefix(s, prefix)
		return s, true
	}
	return s, false
}
