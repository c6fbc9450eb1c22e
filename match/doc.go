// Package match runs exhaustiveness-checked pattern matches over tagged
// values and bare tags.
//
//	area, err := match.On[float64](shape, v).
//		WhenData("Circle", goadt.Fields{"radius": 0}, func(*goadt.Value) float64 { return 0 }).
//		When("Circle", func(c *goadt.Value) float64 { return math.Pi * sq(c.Get("radius")) }).
//		When("Square", func(s *goadt.Value) float64 { return sq(s.Get("size")) }).
//		Done()
//
// Done is only valid once every tag in the TagSet has a tag matcher; a
// partial chain ends with Else or ElseFunc instead. Matchers run in
// registration order and the first one that applies wins.
package match
