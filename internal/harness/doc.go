package harness

// Scenario format:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	program: path/to/spec-dir
//	events:
//	  - {term: 1, ordpos: 1}
//	  - {term: 2, ordpos: 2}
//	expect:
//	  - {name: pattern-name, start_ordpos: 1, end_ordpos: 2}
//	seed:
//	  frequencies:
//	    - {event_id: 5, corpus: default, df: 1000}
//	assertions:
//	  - type: final_state
//	    table: frequency_records
//	    where: {event_id: 5}
//	    expect: {df: 1000}
//
// Load a scenario and run it:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/sequence.yaml")
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
