// Package quantity normalizes Kubernetes resource-quantity strings reported by
// metrics-server into cores and gigabytes, and formats them for display.
//
// Only the suffixes metrics-server actually emits are understood: n, u, m and
// bare values for CPU; Ki, Mi, Gi and bare bytes for memory. Any other suffix
// falls through to the bare-number path, so "1Ti" is rejected as non-numeric
// and "1e3" is read as a plain number. Callers rely on that tolerance.
package quantity

import (
	"fmt"
	"strconv"
	"strings"
)

// Unit is a canonical unit a Quantity can be expressed in.
type Unit int

const (
	Cores Unit = iota
	Nanocores
	Kibibytes
	Gigabytes
)

func (u Unit) String() string {
	switch u {
	case Cores:
		return "cores"
	case Nanocores:
		return "nanocores"
	case Kibibytes:
		return "kibibytes"
	case Gigabytes:
		return "gigabytes"
	}
	return fmt.Sprintf("Unit(%d)", int(u))
}

func (u Unit) isCPU() bool { return u == Cores || u == Nanocores }

const (
	nanosPerCore = 1e9
	kiPerGi      = 1024 * 1024
)

// Quantity is a parsed value in one of the canonical units.
type Quantity struct {
	Value float64
	Unit  Unit
}

// In converts q to the target unit. CPU and memory units do not convert into
// each other.
func (q Quantity) In(target Unit) (Quantity, error) {
	if q.Unit == target {
		return q, nil
	}
	if q.Unit.isCPU() != target.isCPU() {
		return Quantity{}, fmt.Errorf("cannot convert %s to %s", q.Unit, target)
	}
	switch {
	case q.Unit == Cores && target == Nanocores:
		return Quantity{Value: q.Value * nanosPerCore, Unit: target}, nil
	case q.Unit == Nanocores && target == Cores:
		return Quantity{Value: q.Value / nanosPerCore, Unit: target}, nil
	case q.Unit == Kibibytes && target == Gigabytes:
		return Quantity{Value: q.Value / kiPerGi, Unit: target}, nil
	default: // Gigabytes -> Kibibytes
		return Quantity{Value: q.Value * kiPerGi, Unit: target}, nil
	}
}

// ParseCPU returns the number of cores in s.
func ParseCPU(s string) (float64, error) {
	switch {
	case strings.HasSuffix(s, "n"):
		v, err := number(s, "n")
		return v / 1e9, err
	case strings.HasSuffix(s, "u"):
		v, err := number(s, "u")
		return v / 1e6, err
	case strings.HasSuffix(s, "m"):
		v, err := number(s, "m")
		return v / 1e3, err
	}
	return number(s, "")
}

// ParseMemory returns the number of gigabytes (GiB) in s.
func ParseMemory(s string) (float64, error) {
	switch {
	case strings.HasSuffix(s, "Ki"):
		v, err := number(s, "Ki")
		return v / (1024 * 1024), err
	case strings.HasSuffix(s, "Mi"):
		v, err := number(s, "Mi")
		return v / 1024, err
	case strings.HasSuffix(s, "Gi"):
		return number(s, "Gi")
	}
	v, err := number(s, "")
	return v / (1024 * 1024 * 1024), err
}

// ToNanocores returns s normalized to nanocores, the unit pod usage is summed in.
func ToNanocores(s string) (Quantity, error) {
	var (
		v   float64
		err error
	)
	switch {
	case strings.HasSuffix(s, "n"):
		v, err = number(s, "n")
	case strings.HasSuffix(s, "u"):
		v, err = number(s, "u")
		v *= 1e3
	case strings.HasSuffix(s, "m"):
		v, err = number(s, "m")
		v *= 1e6
	default:
		v, err = number(s, "")
		v *= 1e9
	}
	return Quantity{Value: v, Unit: Nanocores}, err
}

// ToKibibytes returns s normalized to KiB, the unit pod memory is summed in.
func ToKibibytes(s string) (Quantity, error) {
	var (
		v   float64
		err error
	)
	switch {
	case strings.HasSuffix(s, "Ki"):
		v, err = number(s, "Ki")
	case strings.HasSuffix(s, "Mi"):
		v, err = number(s, "Mi")
		v *= 1024
	case strings.HasSuffix(s, "Gi"):
		v, err = number(s, "Gi")
		v *= 1024 * 1024
	default:
		v, err = number(s, "")
		v /= 1024
	}
	return Quantity{Value: v, Unit: Kibibytes}, err
}

// FormatUsage renders a CPU and memory quantity pair as "X.XX cores, Y.YY GB".
func FormatUsage(cpu, memory string) (string, error) {
	cores, err := ParseCPU(cpu)
	if err != nil {
		return "", err
	}
	gb, err := ParseMemory(memory)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%.2f cores, %.2f GB", cores, gb), nil
}

// FormatNanocores renders an aggregated CPU total. Totals below one millicore
// keep the raw nanocore count; larger ones switch to millicores.
func FormatNanocores(n float64) string {
	if n < 1e6 {
		return strconv.FormatFloat(n, 'f', -1, 64) + "n"
	}
	return fmt.Sprintf("%.2fm", n/1e6)
}

// FormatKibibytes renders an aggregated memory total in whole KiB.
func FormatKibibytes(k float64) string {
	return fmt.Sprintf("%.0fKi", k)
}

func number(s, suffix string) (float64, error) {
	raw := strings.TrimSpace(strings.TrimSuffix(s, suffix))
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return v, nil
}
