// Package config provides configuration parsing for htms.
//
// The configuration lives in htms.json or htms.yaml. Every field is
// optional; missing values fall back to the defaults returned by New,
// which match the attribute and header names servers expect.
//
// # Configuration File Structure
//
//	{
//	  "attributes": {
//	    "get": "x-get",
//	    "post": "x-post",
//	    "replace": "x-replace",
//	    "pushUrl": "x-push-url"
//	  },
//	  "transport": {
//	    "requestHeader": "X-Request",
//	    "contentType": "application/json",
//	    "timeout": "0s",
//	    "userAgent": "htms/dev"
//	  },
//	  "merge": {
//	    "sanitize": false
//	  },
//	  "telemetry": {
//	    "namespace": "htms",
//	    "tracerName": "htms"
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
//	fmt.Println("GET marker:", cfg.Attributes.Get)
package config
