// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"flag"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/devblok/korugpu/core"
	"github.com/devblok/korugpu/model"
	"github.com/devblok/korugpu/vulkan"
	"github.com/devblok/korugpu/window"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
)

func init() {
	runtime.LockOSThread()
}

// Profiling
var (
	cpuProfile   = flag.String("cpuprof", "", "Profile CPU usage to file")
	memProfile   = flag.String("memprof", "", "Profile memory usage into a file")
	traceProfile = flag.String("trace", "", "Trace output for profiling")
	debug        = flag.Bool("vkdbg", false, "Load Vulkan validation layers and time compute operations")
	envFile      = flag.String("env", ".env", "Configuration file read before the environment")
)

func setupLogging(level log.Level) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(level)
}

func main() {
	flag.Parse()

	configuration, err := core.LoadConfiguration(*envFile)
	if err != nil {
		setupLogging(log.InfoLevel)
		log.Fatal(err)
	}
	if *debug {
		configuration.Instance.DebugMode = true
		configuration.Engine.DebugMode = true
		configuration.LogLevel = log.DebugLevel
	}
	setupLogging(configuration.LogLevel)

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal(err)
		}
		defer pprof.StopCPUProfile()
	}

	if *traceProfile != "" {
		f, err := os.Create(*traceProfile)
		if err != nil {
			log.Fatal(err)
		}
		if err := trace.Start(f); err != nil {
			log.Fatal(err)
		}
		defer trace.Stop()
	}

	if err := run(configuration); err != nil {
		log.Fatal(err)
	}

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			log.Fatal(err)
		}
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal(err)
		}
	}
}

func run(configuration core.Configuration) error {
	if err := window.Init(); err != nil {
		return err
	}
	defer window.Quit()

	sdlWindow, err := window.New("Koru3D", configuration.Engine.ScreenWidth, configuration.Engine.ScreenHeight)
	if err != nil {
		return err
	}
	defer sdlWindow.Destroy()

	configuration.Instance.Extensions = append(configuration.Instance.Extensions, sdlWindow.RequiredInstanceExtensions()...)
	instance, err := vulkan.MakeInstance(vulkan.DefaultApplicationInfo, window.ProcAddr(), configuration.Instance)
	if err != nil {
		return err
	}
	defer instance.Destroy()

	if err := sdlWindow.CreateSurface(instance); err != nil {
		return err
	}
	defer sdlWindow.DestroySurface()

	configuration.Engine.Logger = log.WithField("component", "engine")
	engine, err := core.New(instance, sdlWindow, configuration.Engine)
	if err != nil {
		return err
	}
	defer engine.Destroy()

	renderPass, err := engine.CreateRenderPass()
	if err != nil {
		return err
	}
	defer renderPass.Destroy()

	if _, err := engine.CreateFrameBuffers(renderPass); err != nil {
		return err
	}
	logUniform(engine)

	return eventLoop(engine, renderPass, configuration.Time)
}

// eventLoop polls window events and dispatches one compute operation per
// frame tick until the window is closed.
func eventLoop(engine *core.GraphicalEngine, renderPass core.RenderPass, cfg core.TimeConfiguration) error {
	timeService := core.NewTime(cfg)
	defer timeService.Stop()

	var (
		running       = true
		resizePending bool
		frames        int
	)
	for running {
		select {
		case <-timeService.EventTicker().C:
			for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
				switch et := event.(type) {
				case *sdl.KeyboardEvent:
					if et.Keysym.Sym == sdl.K_ESCAPE {
						running = false
					}
				case *sdl.WindowEvent:
					switch et.Event {
					case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED, sdl.WINDOWEVENT_RESTORED:
						resizePending = true
					}
				case *sdl.QuitEvent:
					running = false
				}
			}

			if resizePending {
				framebuffers, err := engine.RecreateSwapChainAndImages(renderPass)
				if err != nil {
					return err
				}
				// Nil means the window cannot be presented to yet, retried on the next poll
				if framebuffers != nil {
					resizePending = false
					logUniform(engine)
				}
			}
		case <-timeService.FpsTicker().C:
			if err := engine.Compute(core.OperationFunc(emptyOperation)); err != nil {
				return errors.Wrap(err, "compute")
			}
			frames++
		}
	}

	log.WithField("frames", frames).Info("event loop exited")
	return nil
}

func emptyOperation(e *core.GraphicalEngine) (core.CommandBuffer, error) {
	commandBuffer, err := e.LogicalDevice().CommandPool().Allocate()
	if err != nil {
		return nil, err
	}
	if err := commandBuffer.Begin(); err != nil {
		commandBuffer.Release()
		return nil, err
	}
	if err := commandBuffer.End(); err != nil {
		commandBuffer.Release()
		return nil, err
	}
	return commandBuffer, nil
}

func logUniform(engine *core.GraphicalEngine) {
	extent := engine.Swapchain().CreateInfo().ImageExtent
	ubo := model.NewUniform(extent)
	log.WithFields(log.Fields{
		"width":      extent.Width,
		"height":     extent.Height,
		"projection": ubo.Projection,
	}).Debug("projection updated")
}
