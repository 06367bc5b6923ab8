// Package configmem reads the configuration memory mapping table of a
// tile: one record per frame, carrying the frame's used-bit mask and the
// global configuration bit indices it stores.
package configmem

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/openfpga-tools/fabricgen/internal/fabric"
)

// noBitsMarker is the range expression for a frame carrying no bits.
const noBitsMarker = "NULL"

// Parse reads the mapping table at path and returns the frames that carry
// at least one used bit, in file order. globalBits is the tile's total
// configuration bit count, which the table must account for exactly.
func Parse(path string, maxFramesPerCol, frameBitsPerRow, globalBits int) ([]*fabric.ConfigMem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config memory table: %w", err)
	}
	return ParseText(string(data), path, maxFramesPerCol, frameBitsPerRow, globalBits)
}

// ParseText parses mapping table content. name is used in diagnostics only.
func ParseText(text, name string, maxFramesPerCol, frameBitsPerRow, globalBits int) ([]*fabric.ConfigMem, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading config memory table %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", fabric.ErrMissingSection, name)
	}

	columns := make(map[string]int)
	for i, header := range records[0] {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, required := range []string{"frame_name", "frame_index", "used_bits_mask", "configbits_ranges"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: %s has no %s column", fabric.ErrMissingSection, name, required)
		}
	}

	rows := records[1:]
	if len(rows) != maxFramesPerCol {
		return nil, fmt.Errorf("%w: %s has %d frame records, want %d",
			fabric.ErrFrameCountMismatch, name, len(rows), maxFramesPerCol)
	}

	var frames []*fabric.ConfigMem
	allocated := make(map[int]string)
	totalUsed := 0
	for _, row := range rows {
		frameName := strings.TrimSpace(row[columns["frame_name"]])
		frameIndex, err := strconv.Atoi(strings.TrimSpace(row[columns["frame_index"]]))
		if err != nil {
			return nil, fmt.Errorf("%w: frame %s in %s has index %q",
				fabric.ErrMalformedExpression, frameName, name, row[columns["frame_index"]])
		}

		// Masks may carry underscores as visual group separators.
		mask := strings.ReplaceAll(strings.TrimSpace(row[columns["used_bits_mask"]]), "_", "")
		if len(mask) != frameBitsPerRow {
			return nil, fmt.Errorf("%w: frame %s in %s has a %d character mask, want %d",
				fabric.ErrMaskWidthMismatch, frameName, name, len(mask), frameBitsPerRow)
		}
		used := 0
		for _, c := range mask {
			switch c {
			case '1':
				used++
			case '0':
			default:
				return nil, fmt.Errorf("%w: frame %s in %s has mask character %q",
					fabric.ErrMaskWidthMismatch, frameName, name, string(c))
			}
		}
		if used > frameBitsPerRow {
			return nil, fmt.Errorf("%w: frame %s in %s uses %d bits, row width is %d",
				fabric.ErrMaskOverflow, frameName, name, used, frameBitsPerRow)
		}
		totalUsed += used

		indices, err := parseRanges(strings.TrimSpace(row[columns["configbits_ranges"]]), frameName, name)
		if err != nil {
			return nil, err
		}
		for _, bit := range indices {
			if owner, taken := allocated[bit]; taken {
				return nil, fmt.Errorf("%w: bit %d in frame %s of %s already belongs to frame %s",
					fabric.ErrDuplicateBitAllocation, bit, frameName, name, owner)
			}
			allocated[bit] = frameName
		}

		if used == 0 {
			continue
		}
		frames = append(frames, &fabric.ConfigMem{
			FrameName:       frameName,
			FrameIndex:      frameIndex,
			BitsUsedInFrame: used,
			UsedBitMask:     mask,
			ConfigBitRanges: indices,
		})
	}

	if totalUsed != globalBits {
		return nil, fmt.Errorf("%w: %s masks use %d bits, tile declares %d",
			fabric.ErrGlobalBitCountMismatch, name, totalUsed, globalBits)
	}
	return frames, nil
}

// parseRanges resolves a range expression into its bit index sequence. It
// is either hi:lo (inclusive, emitted in declaration order), a semicolon
// separated index list, or the no-bits marker. Anything else, including a
// bare index or an empty field, is malformed.
func parseRanges(expr, frameName, name string) ([]int, error) {
	if strings.EqualFold(expr, noBitsMarker) {
		return nil, nil
	}

	if hiStr, loStr, ok := strings.Cut(expr, ":"); ok {
		hi, err1 := strconv.Atoi(hiStr)
		lo, err2 := strconv.Atoi(loStr)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("%w: frame %s in %s has range %q",
				fabric.ErrMalformedExpression, frameName, name, expr)
		}
		step := 1
		if hi > lo {
			step = -1
		}
		var indices []int
		for bit := hi; ; bit += step {
			indices = append(indices, bit)
			if bit == lo {
				break
			}
		}
		return indices, nil
	}

	if !strings.Contains(expr, ";") {
		return nil, fmt.Errorf("%w: frame %s in %s has range %q",
			fabric.ErrMalformedExpression, frameName, name, expr)
	}
	var indices []int
	for _, field := range strings.Split(expr, ";") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		bit, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("%w: frame %s in %s has bit index %q",
				fabric.ErrMalformedExpression, frameName, name, field)
		}
		indices = append(indices, bit)
	}
	return indices, nil
}
