// Package config provides configuration parsing for emtpl.
//
// The configuration is stored in emtpl.json next to the templates.
// Every field is optional; missing values fall back to the defaults
// exported by this package.
//
// # Configuration File Structure
//
//	{
//	  "parser": {
//	    "voidTags": ["input", "br", "hr", "img", "meta", "!DOCTYPE"]
//	  },
//	  "diff": {
//	    "similarityThreshold": 0.85,
//	    "textNearMiss": 0.9
//	  },
//	  "render": {
//	    "contentTag": "content",
//	    "injectionGuard": "Not allow script"
//	  },
//	  "templates": {
//	    "dir": "templates",
//	    "bucket": "my-templates",
//	    "region": "eu-west-1"
//	  },
//	  "store": {"path": "snapshots.db"},
//	  "server": {"port": 7070}
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Threshold:", cfg.Diff.SimilarityThreshold)
package config
