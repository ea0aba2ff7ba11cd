// Package nvsmi obtains GPU metrics by running the NVIDIA SMI tool and
// parsing its full XML dump.
package nvsmi

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnavailable is the single failure state for GPU data. Missing tool,
// launch failure, empty output, malformed XML and missing fields all
// collapse into it; the caller retries on its next refresh.
var ErrUnavailable = errors.New("gpu data unavailable")

// Metrics is one complete GPU reading. A Metrics value is only ever
// produced with every field populated; partial readings are reported as
// ErrUnavailable instead.
type Metrics struct {
	Name               string
	DriverVersion      string
	TemperatureCelsius uint
	MemoryTotalGB      float64
	MemoryUsedGB       float64
	UtilizationPercent uint
}

// XML shapes for the subset of `nvidia-smi -q -x` output we consume.
// Unrecognized elements are ignored by the decoder.
type smiLog struct {
	XMLName       xml.Name `xml:"nvidia_smi_log"`
	DriverVersion string   `xml:"driver_version"`
	GPUs          []smiGPU `xml:"gpu"`
}

type smiGPU struct {
	ProductName string         `xml:"product_name"`
	Temperature smiTemperature `xml:"temperature"`
	FBMemory    smiMemoryUsage `xml:"fb_memory_usage"`
	Utilization smiUtilization `xml:"utilization"`
}

type smiTemperature struct {
	GPUTemp string `xml:"gpu_temp"`
}

type smiMemoryUsage struct {
	Total string `xml:"total"`
	Used  string `xml:"used"`
}

type smiUtilization struct {
	GPUUtil string `xml:"gpu_util"`
}

// Parse extracts a Metrics value from a full XML dump. The first GPU record
// is used. Memory figures are reported by the tool in MiB and converted to
// GB by dividing by 1024, a deliberate binary approximation.
func Parse(raw []byte) (Metrics, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Metrics{}, fmt.Errorf("%w: empty tool output", ErrUnavailable)
	}

	var doc smiLog
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return Metrics{}, fmt.Errorf("%w: parse xml: %v", ErrUnavailable, err)
	}
	if len(doc.GPUs) == 0 {
		return Metrics{}, fmt.Errorf("%w: no gpu record in dump", ErrUnavailable)
	}
	gpu := doc.GPUs[0]

	name := strings.TrimSpace(gpu.ProductName)
	if name == "" {
		return Metrics{}, fmt.Errorf("%w: missing product_name", ErrUnavailable)
	}
	driver := strings.TrimSpace(doc.DriverVersion)
	if driver == "" {
		return Metrics{}, fmt.Errorf("%w: missing driver_version", ErrUnavailable)
	}

	temp, err := parseUintField("gpu_temp", gpu.Temperature.GPUTemp)
	if err != nil {
		return Metrics{}, err
	}
	totalMiB, err := parseUintField("fb_memory_usage/total", gpu.FBMemory.Total)
	if err != nil {
		return Metrics{}, err
	}
	usedMiB, err := parseUintField("fb_memory_usage/used", gpu.FBMemory.Used)
	if err != nil {
		return Metrics{}, err
	}
	util, err := parseUintField("gpu_util", gpu.Utilization.GPUUtil)
	if err != nil {
		return Metrics{}, err
	}

	return Metrics{
		Name:               name,
		DriverVersion:      driver,
		TemperatureCelsius: temp,
		MemoryTotalGB:      float64(totalMiB) / 1024,
		MemoryUsedGB:       float64(usedMiB) / 1024,
		UtilizationPercent: util,
	}, nil
}

// parseUintField reads the numeric lead of a field value, tolerating the
// unit suffixes the tool appends ("24576 MiB", "65 C", "12 %"). Absent or
// non-numeric values such as "N/A" are unavailable, never defaulted.
func parseUintField(name, raw string) (uint, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, fmt.Errorf("%w: missing %s", ErrUnavailable, name)
	}
	n, err := strconv.ParseUint(strings.Fields(v)[0], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not numeric", ErrUnavailable, name, raw)
	}
	return uint(n), nil
}
