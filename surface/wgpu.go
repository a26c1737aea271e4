// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu && !(cgo && (linux || darwin || freebsd))

package surface

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// ErrNoAdapter is wrapped when a GPU backend exposes no adapters.
var ErrNoAdapter = errors.New("surface: no GPU adapters found")

// halBackend is the part of hal.Backend the provider uses.
type halBackend interface {
	CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error)
}

// depthStencil lists the depth/stencil attachments WebGPU renders with.
var depthStencil = []struct{ depth, stencil uint }{
	{16, 0}, // depth16unorm
	{24, 0}, // depth24plus
	{24, 8}, // depth24plus-stencil8
}

// HALProvider answers capability queries from the adapters a wgpu HAL
// backend exposes. Each adapter contributes the render formats WebGPU
// guarantees, with sample counts 1 and 4.
type HALProvider struct {
	backend halBackend
}

// NewHALProvider wraps a HAL backend.
func NewHALProvider(backend halBackend) *HALProvider {
	return &HALProvider{backend: backend}
}

// QueryConfigs implements CapabilityQuery. Adapters are enumerated on every
// call so a hot-plugged GPU is seen by the next session.
func (p *HALProvider) QueryConfigs(ctx context.Context, c Criteria) ([]Candidate, error) {
	configs, err := p.Configs()
	if err != nil {
		return nil, err
	}
	return configs.QueryConfigs(ctx, c)
}

// Configs enumerates adapters and returns their configurations,
// discrete GPUs first.
func (p *HALProvider) Configs() (ConfigList, error) {
	instance, err := p.backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	defer instance.Destroy()

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return nil, ErrNoAdapter
	}

	order := make([]int, len(adapters))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return adapterRank(adapters[order[i]]) < adapterRank(adapters[order[j]])
	})

	var list ConfigList
	for _, idx := range order {
		info := adapterInfo(adapters[idx])
		for _, samples := range []uint{1, 4} {
			for _, format := range []gputypes.TextureFormat{
				gputypes.TextureFormatBGRA8Unorm,
				gputypes.TextureFormatRGBA8Unorm,
			} {
				for _, ds := range depthStencil {
					cfg := Config{
						ID:          len(list) + 1,
						Source:      info.Name,
						Adapter:     info,
						Format:      format,
						RedBits:     8,
						GreenBits:   8,
						BlueBits:    8,
						AlphaBits:   8,
						DepthBits:   ds.depth,
						StencilBits: ds.stencil,
					}
					if samples > 1 {
						cfg.SampleBuffers = 1
						cfg.Samples = samples
					}
					list = append(list, cfg)
				}
			}
		}
	}
	return list, nil
}

func adapterRank(a hal.ExposedAdapter) int {
	switch a.Info.DeviceType {
	case gputypes.DeviceTypeDiscreteGPU:
		return 0
	case gputypes.DeviceTypeIntegratedGPU:
		return 1
	default:
		return 2
	}
}

// adapterInfo describes a HAL adapter in gpucontext terms.
func adapterInfo(a hal.ExposedAdapter) gpucontext.AdapterInfo {
	info := gpucontext.AdapterInfo{Name: a.Info.Name, Type: gpucontext.AdapterTypeUnknown}
	switch a.Info.DeviceType {
	case gputypes.DeviceTypeDiscreteGPU:
		info.Type = gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		info.Type = gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		info.Type = gpucontext.AdapterTypeSoftware
	}
	if info.Name == "" {
		info.Name = "Vulkan adapter"
	}
	return info
}

func vulkanBackend() (halBackend, bool) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, false
	}
	return backend, true
}

func init() {
	Register(WGPUName, 100, func() (CapabilityQuery, error) {
		backend, ok := vulkanBackend()
		if !ok {
			return nil, &BackendUnavailableError{Name: WGPUName}
		}
		return NewHALProvider(backend), nil
	}, func() bool {
		_, ok := vulkanBackend()
		return ok
	})
}
