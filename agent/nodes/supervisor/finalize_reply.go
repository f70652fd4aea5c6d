package supervisornode

// FinalizeReply shapes the driver-facing output: the turns this invocation
// appended, in order.
func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil || in.Session == nil {
		return GraphOutput{}, ErrNilSession
	}
	return GraphOutput{Turns: in.Appended}, nil
}
