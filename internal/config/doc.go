// Package config provides configuration parsing for Kirei projects.
//
// The configuration is stored in kirei.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "name": "todo-app",
//	  "fx": {
//	    "queue": "deferred",
//	    "recursionLimit": 100,
//	    "silenceReadonlyWarnings": false
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "inspector": {
//	    "addr": "localhost:7070",
//	    "metricsNamespace": "kirei"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Inspector:", cfg.Inspector.Addr)
package config
