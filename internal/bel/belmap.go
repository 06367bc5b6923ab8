package bel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openfpga-tools/fabricgen/internal/fabric"
)

type flavor int

const (
	flavorVerilog flavor = iota
	flavorVHDL
)

// parseBelMap extracts the configuration bit map of a bel source. BelEnum
// blocks pre-declare symbolic enum fields with an explicit bit range;
// BelMap entries either reference an enum, expand a value range, or declare
// a single scalar feature.
func parseBelMap(text, name string, fl flavor) (fabric.BelMap, error) {
	enums, err := parseBelEnums(text, name, fl)
	if err != nil {
		return nil, err
	}

	belMap := make(fabric.BelMap)
	pattern := verilogBelMapPattern
	if fl == flavorVHDL {
		pattern = vhdlBelMapPattern
	}
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return belMap, nil
	}

	for _, entry := range splitEntries(m[1]) {
		key, value, found := strings.Cut(entry, "=")
		if !found {
			return nil, fmt.Errorf("%w: BelMap entry %q in %s", fabric.ErrMalformedExpression, entry, name)
		}
		key = foldVectorSuffix(key)

		if enum, ok := enums[key]; ok {
			belMap[key] = enum
			continue
		}
		if strings.Contains(value, ":") {
			feature, err := expandRange(value, name)
			if err != nil {
				return nil, err
			}
			belMap[key] = feature
			continue
		}
		belMap[key] = fabric.Feature{"0": fabric.BitMap{0: "1"}}
	}
	return belMap, nil
}

// parseBelEnums collects pre-declared enum fields: the first entry names
// the field and its bit range, the remaining entries assign a literal bit
// string to each symbolic value.
func parseBelEnums(text, name string, fl flavor) (map[string]fabric.Feature, error) {
	pattern := verilogBelEnumPattern
	if fl == flavorVHDL {
		pattern = vhdlBelEnumPattern
	}

	enums := make(map[string]fabric.Feature)
	for _, m := range pattern.FindAllStringSubmatch(text, -1) {
		entries := splitEntries(m[1])
		if len(entries) == 0 {
			continue
		}
		rangeMatch := enumRangePattern.FindStringSubmatch(entries[0])
		if rangeMatch == nil {
			return nil, fmt.Errorf("%w: invalid enum %q in %s", fabric.ErrMalformedExpression, entries[0], name)
		}
		field := rangeMatch[1]
		hi, _ := strconv.Atoi(rangeMatch[2])
		lo, _ := strconv.Atoi(rangeMatch[3])

		feature := make(fabric.Feature)
		for _, assignment := range entries[1:] {
			label, bitString, found := strings.Cut(assignment, "=")
			if !found {
				return nil, fmt.Errorf("%w: enum assignment %q in %s", fabric.ErrMalformedExpression, assignment, name)
			}
			bm, err := distributeBits(bitString, hi, lo)
			if err != nil {
				return nil, fmt.Errorf("enum %s value %s in %s: %w", field, label, name, err)
			}
			feature[label] = bm
		}
		enums[field] = feature
	}
	return enums, nil
}

// distributeBits spreads the characters of a literal bit string across the
// positions hi..lo in declaration order.
func distributeBits(bitString string, hi, lo int) (fabric.BitMap, error) {
	width := hi - lo
	if width < 0 {
		width = -width
	}
	width++
	if len(bitString) != width {
		return nil, fmt.Errorf("%w: %d bits for range of width %d",
			fabric.ErrDimensionMismatch, len(bitString), width)
	}

	bm := make(fabric.BitMap, width)
	step := -1
	if hi < lo {
		step = 1
	}
	pos := hi
	for i := 0; i < width; i++ {
		bm[pos] = string(bitString[i])
		pos += step
	}
	return bm, nil
}

// expandRange turns a ranged feature value "hi:lo" into one entry per
// representable integer, each mapped to its fixed-width binary form with
// the most significant bit at the highest range position.
func expandRange(value, name string) (fabric.Feature, error) {
	hiStr, loStr, _ := strings.Cut(value, ":")
	hi, err1 := strconv.Atoi(hiStr)
	lo, err2 := strconv.Atoi(loStr)
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("%w: range %q in %s", fabric.ErrMalformedExpression, value, name)
	}

	width := hi - lo
	descending := width >= 0
	if width < 0 {
		width = -width
	}
	width++

	feature := make(fabric.Feature)
	for v := 0; v < 1<<width; v++ {
		encoded := v
		if !descending {
			encoded = 1<<width - 1 - v
		}
		bits := fmt.Sprintf("%0*b", width, encoded)
		bm := make(fabric.BitMap, width)
		for i := 0; i < width; i++ {
			bm[width-1-i] = string(bits[i])
		}
		feature[strconv.Itoa(v)] = bm
	}
	return feature, nil
}

// foldVectorSuffix converts a trailing _<digits> suffix into vector syntax:
// INIT_1 becomes INIT[1]. Attribute names cannot carry square brackets in
// the source language, so the suffix encoding stands in for them.
func foldVectorSuffix(key string) string {
	i := strings.LastIndex(key, "_")
	if i < 0 || i == len(key)-1 {
		return key
	}
	suffix := key[i+1:]
	if _, err := strconv.Atoi(suffix); err != nil {
		return key
	}
	return key[:i] + "[" + suffix + "]"
}

// splitEntries flattens an attribute block body into its comma separated
// entries, dropping whitespace and empties.
func splitEntries(body string) []string {
	body = strings.NewReplacer("\n", "", " ", "", "\t", "", "\r", "").Replace(body)
	var entries []string
	for _, e := range strings.Split(body, ",") {
		// VHDL attribute blocks carry the comment leader on every line.
		e = strings.TrimLeft(e, "-")
		if e != "" {
			entries = append(entries, e)
		}
	}
	return entries
}
