package metrics

// Policy carries the tuned constants behind the aggregators. The weights are
// heuristics carried over from the original dashboard, not derived values;
// keep them configurable rather than guessing intent.
type Policy struct {
    DailyCapacityHours float64 // standard hours a working day contributes
    ForecastDays       int     // forward projection horizon, calendar days
    TrailingWindowDays int     // working days feeding the flat-trend forecast
    TopN               int     // size of top/bottom contributor lists

    PriorityWeights       map[string]float64
    DefaultPriorityWeight float64 // unrecognized or missing priority

    // qualityScore = productivity*QualityProductivityW + balance*QualityBalanceW
    //              + (100 - effortOutputRatio*10)*QualityEffortW
    QualityProductivityW float64
    QualityBalanceW      float64
    QualityEffortW       float64

    // overallEfficiency = productivity*OverallProductivityW + balance*OverallBalanceW
    //                   + quality*OverallQualityW + response*OverallResponseW
    OverallProductivityW float64
    OverallBalanceW      float64
    OverallQualityW      float64
    OverallResponseW     float64

    ResponsePenaltyPerDay float64 // index points lost per avg resolution day

    // Placeholder quality sub-metrics pending reopen/regression history.
    // Published as-is, never computed.
    TicketReopeningRate float64
    ResolutionAccuracy  float64
}

func DefaultPolicy() Policy {
    return Policy{
        DailyCapacityHours: 8,
        ForecastDays:       30,
        TrailingWindowDays: 7,
        TopN:               5,

        PriorityWeights: map[string]float64{
            "Highest": 5,
            "High":    4,
            "Medium":  3,
            "Low":     2,
            "Lowest":  1,
        },
        DefaultPriorityWeight: 3,

        QualityProductivityW: 0.4,
        QualityBalanceW:      0.3,
        QualityEffortW:       0.3,

        OverallProductivityW: 0.3,
        OverallBalanceW:      0.2,
        OverallQualityW:      0.3,
        OverallResponseW:     0.2,

        ResponsePenaltyPerDay: 5,

        TicketReopeningRate: 2.5,
        ResolutionAccuracy:  92.0,
    }
}
