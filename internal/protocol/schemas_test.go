package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	frameSchema := compile("frame.schema.json")
	inputSchema := compile("input.schema.json")
	statusSchema := compile("status.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "client_name":"probe1",
	  "capabilities":{"max_queue":8}
	}`), &hello)
	validate(helloSchema, hello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "client_id":"C1",
	  "scene_params":{
	    "tick_rate_hz":30,
	    "real_scale":false,
	    "days_per_second":0.25,
	    "seed":1337
	  },
	  "catalog":{"digest":"deadbeef","count":21}
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var frame any
	_ = json.Unmarshal([]byte(`{
	  "type":"FRAME",
	  "protocol_version":"1.0",
	  "tick":42,
	  "mode":"auto-travel",
	  "camera":{"pos":[0,20,160],"look":[160,0,0],"yaw":0.5,"pitch":-0.1},
	  "bodies":[{"name":"Earth","pos":[160,0,0],"radius":4,"spin":1.57}]
	}`), &frame)
	validate(frameSchema, frame)

	var input any
	_ = json.Unmarshal([]byte(`{
	  "type":"INPUT",
	  "protocol_version":"1.0",
	  "client_id":"C1",
	  "command":"program",
	  "axes":{"forward":1,"strafe":0,"vertical":0,"boost":true}
	}`), &input)
	validate(inputSchema, input)

	var status any
	_ = json.Unmarshal([]byte(`{
	  "type":"STATUS",
	  "protocol_version":"1.0",
	  "tick":42,
	  "mode":"orbit",
	  "target_type":"moon",
	  "target_key":"Europa",
	  "label":"Europa (Jupiter)",
	  "distance":6.2,
	  "eta_seconds":12.5,
	  "turn_progress":0.4,
	  "turn_target":1.25
	}`), &status)
	validate(statusSchema, status)
}
