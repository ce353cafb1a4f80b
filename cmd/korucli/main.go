// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/devblok/korugpu/core"
	"github.com/devblok/korugpu/vulkan"
	log "github.com/sirupsen/logrus"
)

var debug = flag.Bool("vkdbg", false, "Load Vulkan validation layers")

// Prints every physical device the Vulkan loader exposes as JSON. Rank is
// the selection rank, lower is preferred.
func main() {
	flag.Parse()
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	cfg := core.InstanceConfiguration{
		DebugMode:  *debug,
		Extensions: []string{},
		Layers:     []string{},
	}

	instance, err := vulkan.MakeInstance(vulkan.DefaultApplicationInfo, nil, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer instance.Destroy()

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(instance.PhysicalDevicesInfo()); err != nil {
		log.Fatal(err)
	}
}
