package knowledge

func cloneCommandKnowledge(ck *CommandKnowledge) CommandKnowledge {
	out := CommandKnowledge{
		Command:           ck.Command,
		TotalUsageCount:   ck.TotalUsageCount,
		FirstSeen:         ck.FirstSeen,
		LastUsed:          ck.LastUsed,
		Arguments:         make(map[string]*ArgumentUsage, len(ck.Arguments)),
		FlagCombinations:  make(map[string]*FlagCombination, len(ck.FlagCombinations)),
		ArgumentSequences: make(map[seqKey]*ArgumentSequence, len(ck.ArgumentSequences)),
		ParameterValues:   make(map[string][]*ParameterValue, len(ck.ParameterValues)),
		CoOccurrences:     make(map[pairKey]*CoOccurrence, len(ck.CoOccurrences)),
	}
	for k, v := range ck.Arguments {
		cp := *v
		out.Arguments[k] = &cp
	}
	for k, v := range ck.FlagCombinations {
		cp := *v
		cp.Flags = append([]string(nil), v.Flags...)
		out.FlagCombinations[k] = &cp
	}
	for k, v := range ck.ArgumentSequences {
		cp := *v
		out.ArgumentSequences[k] = &cp
	}
	for k, v := range ck.ParameterValues {
		list := make([]*ParameterValue, len(v))
		for i, pv := range v {
			cp := *pv
			list[i] = &cp
		}
		out.ParameterValues[k] = list
	}
	for k, v := range ck.CoOccurrences {
		cp := *v
		out.CoOccurrences[k] = &cp
	}
	return out
}
