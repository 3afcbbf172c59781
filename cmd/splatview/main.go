package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/ColinFirth5566/3D-SFM/app"
	"github.com/ColinFirth5566/3D-SFM/config"
	"github.com/ColinFirth5566/3D-SFM/core"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	url := flag.String("url", "", "HTTP(S) URL of the splat file to view")
	file := flag.String("file", "", "Local path of the splat file to view")
	cfgPath := flag.String("config", "", "Path to a viewer config file (YAML)")
	debug := flag.Bool("debug", false, "Enable debug logging and the FPS overlay")
	flag.Parse()

	source := *url
	if source == "" {
		source = *file
	}
	if source == "" {
		fmt.Fprintln(os.Stderr, "usage: splatview -url <http(s) url> | -file <path> [-config <yaml>] [-debug]")
		os.Exit(2)
	}

	log := core.NewDefaultLogger("splatview", *debug)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}

	if err := glfw.Init(); err != nil {
		log.Errorf("glfw init: %v", err)
		os.Exit(1)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		log.Errorf("create window: %v", err)
		os.Exit(1)
	}
	defer window.Destroy()

	viewer, err := app.NewApp(window, cfg, log, *debug)
	if err != nil {
		log.Errorf("viewer init: %v", err)
		os.Exit(1)
	}
	defer viewer.Shutdown()

	viewer.Load(source)

	for !window.ShouldClose() {
		viewer.Frame()
	}
}
