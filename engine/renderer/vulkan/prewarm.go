package vulkan

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/fusion/engine/core"
	"github.com/spaghettifunk/fusion/engine/systems"
)

// PrewarmRequest lists objects to create ahead of first use. Pipeline
// layouts are absent: they need set layout handles, which only exist once
// the set layouts below are created.
type PrewarmRequest struct {
	SetLayouts []DescriptorSetLayoutInfo
	Samplers   []SamplerInfo
}

/**
 * @brief Creates every object of the request on the job system workers.
 * Duplicates inside the request collapse to a single creation. A Shutdown
 * racing with Prewarm makes the remaining creations fail with
 * ErrUseAfterTeardown instead of reaching the device.
 * @param jobs The job system to run creations on.
 * @param request The objects to create.
 * @return The combined creation errors, or nil.
 */
func (vc *VulkanContext) Prewarm(jobs *systems.JobSystem, request PrewarmRequest) error {
	if vc.IsShutdown() {
		return core.ErrUseAfterTeardown
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	submit := func(name string, run func() error) {
		wg.Add(1)
		err := jobs.Submit(systems.JobTask{
			Name: name,
			Run:  run,
			OnFailure: func(err error) {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			},
			OnCompletionCallback: wg.Done,
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}
	}

	for i := range request.Samplers {
		info := request.Samplers[i]
		submit(fmt.Sprintf("prewarm-sampler-%d", i), func() error {
			_, err := vc.SamplerCache.CreateSampler(info)
			return err
		})
	}
	for i := range request.SetLayouts {
		info := request.SetLayouts[i]
		submit(fmt.Sprintf("prewarm-set-layout-%d", i), func() error {
			_, err := vc.DescriptorLayoutCache.CreateDescriptorLayout(info)
			return err
		})
	}
	wg.Wait()

	core.LogDebug("prewarmed %d samplers and %d set layouts on %d workers",
		len(request.Samplers), len(request.SetLayouts), jobs.Workers())
	return errors.Join(errs...)
}
