package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"

	"github.com/urbansim/hazardroute/pkg"
	"github.com/urbansim/hazardroute/pkg/logger"
)

var (
	mapFile = flag.String("f", "./data/map.osm.pbf", "openstreetmap pbf extract")
	outDir  = flag.String("out", "./data", "directory the roads/nodes layers are written into")
)

// highways pedestrians can not use at all. everything else with a highway tag
// is kept, the graph build decides traversability per user class.
var rejectedHighways = map[string]struct{}{
	"motorway":      {},
	"motorway_link": {},
	"trunk":         {},
	"trunk_link":    {},
	"construction":  {},
	"proposed":      {},
}

func main() {
	flag.Parse()
	log, err := logger.New()
	if err != nil {
		panic(err)
	}

	if err := run(log); err != nil {
		log.Fatal("import failed", zap.Error(err))
	}
}

func run(log *zap.Logger) error {
	f, err := os.Open(*mapFile)
	if err != nil {
		return err
	}
	defer f.Close()

	// first pass: node refs of every accepted way.
	wayNodes := make(map[int64]struct{})
	ways := make([]*osm.Way, 0)

	scanner := osmpbf.New(context.Background(), f, 0)
	countWays := 0
	for scanner.Scan() {
		o := scanner.Object()
		if o.ObjectID().Type() != osm.TypeWay {
			continue
		}
		way := o.(*osm.Way)
		if len(way.Nodes) < 2 || !acceptWay(way) {
			continue
		}
		if (countWays+1)%50000 == 0 {
			log.Sugar().Infof("scanning openstreetmap ways: %d...", countWays+1)
		}
		countWays++

		for _, node := range way.Nodes {
			wayNodes[int64(node.ID)] = struct{}{}
		}
		ways = append(ways, way)
	}
	scanner.Close()

	// second pass: coordinates of the referenced nodes.
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	coords := make(map[int64]orb.Point, len(wayNodes))

	scanner = osmpbf.New(context.Background(), f, 0)
	defer scanner.Close()
	for scanner.Scan() {
		o := scanner.Object()
		if o.ObjectID().Type() != osm.TypeNode {
			continue
		}
		node := o.(*osm.Node)
		if _, ok := wayNodes[int64(node.ID)]; ok {
			coords[int64(node.ID)] = orb.Point{node.Lon, node.Lat}
		}
	}

	roads := geojson.NewFeatureCollection()
	nodes := geojson.NewFeatureCollection()
	emitted := make(map[int64]struct{})

	for _, way := range ways {
		line := make(orb.LineString, 0, len(way.Nodes))
		for _, node := range way.Nodes {
			if pt, ok := coords[int64(node.ID)]; ok {
				line = append(line, pt)
			}
		}
		if len(line) < 2 {
			continue
		}

		rf := geojson.NewFeature(line)
		rf.Properties["user"] = pkg.ALLOWED_USER_CLASS
		rf.Properties["osm_id"] = int64(way.ID)
		if name := way.Tags.Find("name"); name != "" {
			rf.Properties["name"] = name
		}
		rf.Properties["highway"] = way.Tags.Find("highway")
		roads.Append(rf)

		for _, ref := range []int64{int64(way.Nodes[0].ID), int64(way.Nodes[len(way.Nodes)-1].ID)} {
			if _, done := emitted[ref]; done {
				continue
			}
			pt, ok := coords[ref]
			if !ok {
				continue
			}
			emitted[ref] = struct{}{}

			nf := geojson.NewFeature(pt)
			nf.Properties["user"] = pkg.ALLOWED_USER_CLASS
			nf.Properties["osm_id"] = ref
			nodes.Append(nf)
		}
	}

	if err := writeLayer(filepath.Join(*outDir, "roads.geojson"), roads); err != nil {
		return err
	}
	if err := writeLayer(filepath.Join(*outDir, "nodes.geojson"), nodes); err != nil {
		return err
	}

	log.Info("openstreetmap extract imported",
		zap.String("file", *mapFile),
		zap.Int("roads", len(roads.Features)),
		zap.Int("nodes", len(nodes.Features)))
	return nil
}

func acceptWay(way *osm.Way) bool {
	highway := way.Tags.Find("highway")
	if highway == "" {
		return false
	}
	if _, rejected := rejectedHighways[highway]; rejected {
		return false
	}
	return way.Tags.Find("foot") != "no"
}

func writeLayer(path string, fc *geojson.FeatureCollection) error {
	raw, err := json.Marshal(fc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
