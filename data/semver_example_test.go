package data_test

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	goadt "github.com/reoring/goadt"
	"github.com/reoring/goadt/data"
	"github.com/reoring/goadt/record"
	"github.com/reoring/goadt/schema"
)

type maxSatisfyingFunc func(versions []*goadt.Value, rng *goadt.Value) (*goadt.Value, bool)

// newSemVer models https://semver.org/ versions and ranges as an ADT with a
// shared "semver" codec.
func newSemVer() *data.Controller {
	part := schema.Int().Min(0)
	var adt *data.Controller

	var maxSatisfying maxSatisfyingFunc = func(versions []*goadt.Value, rng *goadt.Value) (*goadt.Value, bool) {
		c, err := semver.NewConstraint(rng.Get("constraint").(string))
		if err != nil {
			return nil, false
		}
		var (
			best    *goadt.Value
			bestVer *semver.Version
		)
		for _, v := range versions {
			text, err := adt.To("semver").Encode(v)
			if err != nil {
				continue
			}
			sv, err := semver.NewVersion(text)
			if err != nil || !c.Check(sv) {
				continue
			}
			if bestVer == nil || sv.GreaterThan(bestVer) {
				best, bestVer = v, sv
			}
		}
		return best, best != nil
	}

	adt = data.New("SemVer").
		Extend(map[string]any{"maxSatisfying": maxSatisfying}).
		Record("Exact", func(r *record.Initial) record.Stage {
			return r.Schema(schema.Fields{
				"major":   part,
				"minor":   part,
				"patch":   part,
				"release": schema.String().Optional(),
				"build":   schema.String().Optional(),
			}).Codec("semver", record.CodecDef{
				To: func(v *goadt.Value) (string, error) {
					s := fmt.Sprintf("%d.%d.%d", v.Get("major"), v.Get("minor"), v.Get("patch"))
					if rel, ok := v.Lookup("release"); ok {
						s += "-" + rel.(string)
					}
					if build, ok := v.Lookup("build"); ok {
						s += "+" + build.(string)
					}
					return s, nil
				},
				From: func(text string, _ record.CodecContext) (goadt.Fields, bool) {
					sv, err := semver.StrictNewVersion(text)
					if err != nil {
						return nil, false
					}
					out := goadt.Fields{"major": sv.Major(), "minor": sv.Minor(), "patch": sv.Patch()}
					if sv.Prerelease() != "" {
						out["release"] = sv.Prerelease()
					}
					if sv.Metadata() != "" {
						out["build"] = sv.Metadata()
					}
					return out, true
				},
			})
		}).
		Record("Range", func(r *record.Initial) record.Stage {
			return r.Schema(schema.Fields{"constraint": schema.String().NonEmpty()}).
				Codec("semver", record.CodecDef{
					To: func(v *goadt.Value) (string, error) { return v.Get("constraint").(string), nil },
					From: func(text string, _ record.CodecContext) (goadt.Fields, bool) {
						if _, err := semver.NewConstraint(text); err != nil {
							return nil, false
						}
						return goadt.Fields{"constraint": text}, true
					},
				})
		}).
		MustDone()
	return adt
}

func ExampleController_semVer() {
	ctx := context.Background()
	semVer := newSemVer()

	exact, _ := semVer.From("semver").Decode(ctx, "1.4.2-rc.1")
	fmt.Println(exact.Tag(), exact.Get("minor"), exact.Get("release"))

	rng, _ := semVer.From("semver").Decode(ctx, ">= 1.2, < 2.0")
	fmt.Println(rng.Tag())

	var versions []*goadt.Value
	for _, s := range []string{"1.0.0", "1.9.3", "2.1.0"} {
		v, _ := semVer.MustMember("Exact").From("semver").Decode(ctx, s)
		versions = append(versions, v)
	}
	maxSatisfying := semVer.Ext("maxSatisfying").(maxSatisfyingFunc)
	best, ok := maxSatisfying(versions, rng)
	text, _ := semVer.To("semver").Encode(best)
	fmt.Println(text, ok)

	// Output:
	// Exact 4 rc.1
	// Range
	// 1.9.3 true
}
