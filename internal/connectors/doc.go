// Package connectors provides implementations of the Connector interface
// for document sources. The filesystem connector is the only
// implementation today; the interface keeps discovery swappable.
//
// A ConnectorFactory creates the connector for an input path at the
// start of each run.
package connectors
