package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host     string   `koanf:"host"`
	Listen   string   `koanf:"listen"`
	Database Database `koanf:"db"`
	Layout   Layout   `koanf:"layout"`
	View     View     `koanf:"view"`
	Event    Event    `koanf:"event"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
	// Pool bounds, pgxpool defaults apply when zero.
	MaxConns int32 `koanf:"maxconns"`
	MinConns int32 `koanf:"minconns"`
}

// Layout holds the geometry constants of the day grid.
type Layout struct {
	// HourHeight is the vertical size of one hour slot, in pixels.
	HourHeight float64 `koanf:"hourheight"`
	// MinHeight is the smallest height an event box can get.
	MinHeight float64 `koanf:"minheight"`
	// MaxWidth is the width percentage shared by the events of one group.
	MaxWidth float64 `koanf:"maxwidth"`
	// Gap is the horizontal distance in percent between neighbouring boxes.
	Gap float64 `koanf:"gap"`
}

type View struct {
	WeekMaxEvents  int    `koanf:"weekmaxevents"`
	MonthMaxEvents int    `koanf:"monthmaxevents"`
	WeekStartsOn   string `koanf:"weekstartson"`
	// CacheDays bounds the laid out days kept in memory per user.
	CacheDays int `koanf:"cachedays"`
}

type Event struct {
	// EndCorrection is added to the start of an event whose end precedes its start.
	EndCorrection  time.Duration `koanf:"endcorrection"`
	DefaultVariant string        `koanf:"defaultvariant"`
}

func Defaults() Application {
	return Application{
		Host:   "http://localhost:3000",
		Listen: ":8181",
		Database: Database{
			Host:     "localhost",
			Port:     5432,
			User:     "scheduler",
			Pass:     "",
			Name:     "scheduler",
			Schema:   "scheduler",
			MaxConns: 25,
			MinConns: 5,
		},
		Layout: Layout{
			HourHeight: 64,
			MinHeight:  20,
			MaxWidth:   95,
			Gap:        1,
		},
		View: View{
			WeekMaxEvents:  10,
			MonthMaxEvents: 1,
			WeekStartsOn:   "sunday",
			CacheDays:      62,
		},
		Event: Event{
			EndCorrection:  time.Hour,
			DefaultVariant: "primary",
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "SCHEDULER_",
		TransformFunc: func(k, v string) (string, any) {
			// SCHEDULER_DB_HOST -> db.host
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "SCHEDULER_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
